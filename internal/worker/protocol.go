// Package worker runs lint passes behind a message boundary. Requests
// carry a full program text; responses carry either the serialized
// failures or an error description, never both.
package worker

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Request asks for one lint pass over Program.
type Request struct {
	Program string `json:"program"`
	// Generation is echoed on the response so callers can drop stale
	// results.
	Generation uint64 `json:"generation,omitempty"`
	// File names the program for dialect detection. Empty means
	// DefaultIdentifier.
	File string `json:"file,omitempty"`
}

// Response is the outcome of a Request. Exactly one of Output and Error
// is set.
type Response struct {
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	Generation uint64 `json:"generation,omitempty"`
}

// ErrAmbiguousResponse is returned by Validate when both channels are set.
var ErrAmbiguousResponse = errors.New("response carries both output and error")

// ErrEmptyResponse is returned by Validate when neither channel is set.
var ErrEmptyResponse = errors.New("response carries neither output nor error")

// Validate checks channel exclusivity.
func (r Response) Validate() error {
	switch {
	case r.Output != "" && r.Error != "":
		return ErrAmbiguousResponse
	case r.Output == "" && r.Error == "":
		return ErrEmptyResponse
	}
	return nil
}

// Failed reports whether r is on the error channel. The error channel
// wins whenever it is populated.
func (r Response) Failed() bool {
	return r.Error != ""
}

// ChannelError is a (de)serialization failure at the worker boundary.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("worker channel: %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// DecodeRequest parses a serialized Request.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, &ChannelError{Op: "decoding request", Err: err}
	}
	return req, nil
}

// EncodeResponse serializes a Response.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, &ChannelError{Op: "encoding response", Err: err}
	}
	return data, nil
}

// DecodeResponse parses and validates a serialized Response.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, &ChannelError{Op: "decoding response", Err: err}
	}
	if err := resp.Validate(); err != nil {
		return Response{}, &ChannelError{Op: "decoding response", Err: err}
	}
	return resp, nil
}

func errorResponse(gen uint64, err error) Response {
	return Response{Error: err.Error(), Generation: gen}
}
