package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const contentLength = "Content-Length:"

// MaxMessage is the largest frame body ReadMessage accepts.
const MaxMessage = 16 << 20

// ErrMessageTooLarge is returned for a frame above MaxMessage.
var ErrMessageTooLarge = errors.New("message too large")

// ReadMessage reads one Content-Length framed message. Header lines other
// than Content-Length are ignored.
func ReadMessage(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line == "" && length < 0 {
					return nil, io.EOF
				}
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("reading header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if !strings.HasPrefix(line, contentLength) {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, contentLength))
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid content length: %s", value)
		}
		if n > MaxMessage {
			return nil, fmt.Errorf("content length %d: %w", n, ErrMessageTooLarge)
		}
		length = n
	}
	if length < 0 {
		return nil, fmt.Errorf("missing %s header", strings.TrimSuffix(contentLength, ":"))
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return buf, nil
}

// WriteMessage writes data with a Content-Length header and flushes.
func WriteMessage(w *bufio.Writer, data []byte) error {
	if _, err := fmt.Fprintf(w, "%s %d\r\n\r\n", contentLength, len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Flush()
}

// Serve answers framed requests from r on w until r is exhausted or ctx is
// cancelled. A malformed frame ends the session since the stream cannot
// be resynchronized; a malformed request body is answered on the error
// channel.
func Serve(ctx context.Context, r io.Reader, w io.Writer, h *Handler) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := ReadMessage(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		out, err := h.HandleRaw(ctx, msg)
		if err != nil {
			slog.Error("encoding worker response", "err", err)
			return err
		}
		if err := WriteMessage(writer, out); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
}
