package api

import "github.com/samcharles93/clprng/internal/stream"

type AlgorithmInfo struct {
	Name       string   `json:"name"`
	StateSize  int      `json:"state_size"`
	NativeBits int      `json:"native_bits"`
	Precisions []string `json:"precisions"`
}

type AlgorithmList struct {
	Object string          `json:"object"`
	Data   []AlgorithmInfo `json:"data"`
}

type CreateStreamRequest struct {
	Algorithm      string  `json:"algorithm"`
	Precision      string  `json:"precision,omitempty"`
	Seed           *uint64 `json:"seed,omitempty"`
	WorkgroupSize  int     `json:"workgroup_size,omitempty"`
	WorkgroupCount int     `json:"workgroup_count,omitempty"`
	BufferEntries  int     `json:"buffer_entries,omitempty"`
}

type StreamInfo struct {
	ID            string              `json:"id"`
	Object        string              `json:"object"`
	CreatedAt     int64               `json:"created_at"`
	Device        string              `json:"device"`
	Algorithm     string              `json:"algorithm"`
	Precision     string              `json:"precision"`
	Seed          uint64              `json:"seed"`
	State         string              `json:"state"`
	Flags         stream.Flags        `json:"flags"`
	Launch        stream.LaunchConfig `json:"launch"`
	BufferEntries int                 `json:"buffer_entries"`
	Valid         int                 `json:"valid"`
	Offset        int                 `json:"offset"`
}

type StreamList struct {
	Object string       `json:"object"`
	Data   []StreamInfo `json:"data"`
}

type GenerateRequest struct {
	Count  int    `json:"count"`
	Format string `json:"format,omitempty"`
}

type GenerateResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Precision string `json:"precision"`
	Count     int    `json:"count"`
	Values    any    `json:"values"`
}

type SeedRequest struct {
	Seed *uint64 `json:"seed"`
}

type PrecisionRequest struct {
	Precision string `json:"precision"`
}

type DeleteStreamResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// ErrorBody is the payload of every failed request. Status is the stream
// status code of the failure and is omitted for transport-level errors.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Status  *int   `json:"status,omitempty"`
}
