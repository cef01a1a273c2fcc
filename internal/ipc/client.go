package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const dialTimeout = 2 * time.Second

// Call sends one request to the daemon socket and decodes the reply. Returns
// an error when the daemon is not running or the reply carries an error kind.
func Call(path string, req Request) (Response, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		return Response{}, fmt.Errorf("daemon not running at %s: %w", path, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	if resp.ErrorKind != "" {
		return resp, fmt.Errorf("%s: %s", resp.ErrorKind, resp.Error)
	}
	return resp, nil
}
