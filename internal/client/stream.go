package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"lucas/internal/logging"
	"lucas/internal/types"
)

// ChunkHandler receives each decoded unit of a message stream in arrival
// order, on the goroutine running MessageStream.
type ChunkHandler func(types.StreamChunk)

type streamEnvelope struct {
	Content struct {
		Parts []struct {
			Text         string              `json:"text"`
			FunctionCall *types.FunctionCall `json:"functionCall"`
		} `json:"parts"`
	} `json:"content"`
	FinishReason string `json:"finishReason"`
}

// MessageStream sends a message and decodes the streamed response. The
// body is a sequence of `data: <json>` lines; a record split across two
// reads is reassembled through the carry-over buffer. Failures never
// escape as errors: transport faults and non-2xx responses surface as a
// single error chunk, malformed lines are logged and skipped.
func (c *Client) MessageStream(ctx context.Context, req MessageRequest, onChunk ChunkHandler) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		onChunk(types.StreamChunk{IsError: true, ErrorText: err.Error()})
		return
	}

	buf, err := json.Marshal(req)
	if err != nil {
		onChunk(types.StreamChunk{IsError: true, ErrorText: err.Error()})
		return
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/message", bytes.NewReader(buf))
	if err != nil {
		onChunk(types.StreamChunk{IsError: true, ErrorText: err.Error()})
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	// The streaming call must outlive the default request timeout.
	httpClient := &http.Client{Transport: c.http.Transport}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		onChunk(types.StreamChunk{IsError: true, ErrorText: err.Error()})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		onChunk(types.StreamChunk{IsError: true, ErrorText: decodeAPIError(resp).Error()})
		return
	}

	c.decodeStream(resp.Body, onChunk)
}

func (c *Client) decodeStream(body io.Reader, onChunk ChunkHandler) {
	read := make([]byte, 4096)
	carry := ""
	for {
		n, err := body.Read(read)
		if n > 0 {
			carry += string(read[:n])
			lines := strings.Split(carry, "\n")
			carry = lines[len(lines)-1]
			for _, line := range lines[:len(lines)-1] {
				c.decodeLine(line, onChunk)
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			onChunk(types.StreamChunk{IsError: true, ErrorText: err.Error()})
			return
		}
	}
}

const dataPrefix = "data: "

func (c *Client) decodeLine(line string, onChunk ChunkHandler) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, dataPrefix) {
		return
	}
	var envelope streamEnvelope
	if err := json.Unmarshal([]byte(line[len(dataPrefix):]), &envelope); err != nil {
		c.log.Warn("skipping malformed stream record", logging.F("err", err))
		return
	}
	if len(envelope.Content.Parts) == 0 {
		return
	}
	part := envelope.Content.Parts[0]
	onChunk(types.StreamChunk{
		Text:         part.Text,
		FunctionCall: part.FunctionCall,
		FinishReason: envelope.FinishReason,
	})
}
