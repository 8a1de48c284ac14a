// Package model holds the websocket messages exchanged by the sync agent and the relay.
package model

import (
	"encoding/json"
	"fmt"
)

const (
	MessageTypeVolume  = "volume"
	MessageTypeClients = "clients"
	MessageTypeError   = "error"
)

// Envelope is decoded first to learn a message's type.
type Envelope struct {
	Type string `json:"type"`
}

// VolumeMessage announces or requests a master volume.
type VolumeMessage struct {
	Type   string `json:"type"`
	Volume int    `json:"volume"`
}

// ClientsMessage carries the number of clients connected to the relay.
type ClientsMessage struct {
	Type    string `json:"type"`
	Clients int    `json:"clients"`
}

// ErrorMessage tells a client its last message was rejected.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewVolumeMessage(volume int) VolumeMessage {
	return VolumeMessage{Type: MessageTypeVolume, Volume: volume}
}

func NewClientsMessage(clients int) ClientsMessage {
	return ClientsMessage{Type: MessageTypeClients, Clients: clients}
}

func NewErrorMessage(msg string) ErrorMessage {
	return ErrorMessage{Type: MessageTypeError, Error: msg}
}

// MessageType returns the type field of a raw message.
func MessageType(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("message has no type")
	}
	return env.Type, nil
}
