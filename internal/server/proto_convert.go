package server

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct converts any JSON-shaped DTO into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode dto: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode dto fields: %w", err)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return st, nil
}

func stateToProto(msg stateMsg) (*structpb.Struct, error) {
	return toStruct(msg)
}

// fromStruct decodes a protobuf Struct frame into dst through its JSON field names.
func fromStruct(st *structpb.Struct, dst any) error {
	raw, err := json.Marshal(st.AsMap())
	if err != nil {
		return fmt.Errorf("encode struct: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode struct: %w", err)
	}
	return nil
}

func decodeProtoInbound(data []byte) (inputMsg, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return inputMsg{}, fmt.Errorf("unmarshal frame: %w", err)
	}
	var msg inputMsg
	if err := fromStruct(&st, &msg); err != nil {
		return inputMsg{}, err
	}
	return msg, nil
}

// sendProtoMessage marshals payload and sends it as a binary WebSocket frame.
func sendProtoMessage(conn *websocket.Conn, payload proto.Message) error {
	data, err := proto.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}
