/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sourcesink implements the foreign server types a ServerModel can
// bind to: NET_CLIENT TCP source/sink (line-delimited JSON) and an
// in-memory queue sink for embedding a pipeline without a network hop.
package sourcesink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/springqlerr"
	"github.com/springql/springql-go/sql"
)

// NetClient is a TCP NET_CLIENT connection, usable as either a source or a
// sink depending on which side of the stream it is bound to. One
// connection is owned exclusively by the SourceTask or SinkTask it serves.
type NetClient struct {
	addr  string
	shape *row.StreamShape

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// ParseNetClientOptions validates a ServerModel's Options against the
// NET_CLIENT recognized-key set: PROTOCOL (must be TCP), REMOTE_HOST,
// REMOTE_PORT (u16).
func ParseNetClientOptions(opts pipeline.Options) (addr string, err error) {
	protocol, ok := opts.Get("PROTOCOL")
	if !ok {
		return "", springqlerr.New(springqlerr.InvalidOption, "NET_CLIENT requires PROTOCOL option")
	}
	if protocol != "TCP" {
		return "", springqlerr.New(springqlerr.InvalidOption, "unsupported PROTOCOL %q, only TCP is supported", protocol)
	}
	host, ok := opts.Get("REMOTE_HOST")
	if !ok {
		return "", springqlerr.New(springqlerr.InvalidOption, "NET_CLIENT requires REMOTE_HOST option")
	}
	portStr, ok := opts.Get("REMOTE_PORT")
	if !ok {
		return "", springqlerr.New(springqlerr.InvalidOption, "NET_CLIENT requires REMOTE_PORT option")
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", springqlerr.Wrap(springqlerr.InvalidOption, err, "invalid REMOTE_PORT %q", portStr)
	}
	return net.JoinHostPort(host, strconv.FormatUint(port, 10)), nil
}

// DialNetClient establishes the TCP connection, bounded by connectTimeout.
func DialNetClient(addr string, shape *row.StreamShape, connectTimeout time.Duration) (*NetClient, error) {
	conn, err := net.DialTimeout("tcp", addr, connectTimeout)
	if err != nil {
		return nil, springqlerr.Wrap(springqlerr.ForeignIo, err, "failed to connect to %s", addr)
	}
	return &NetClient{addr: addr, shape: shape, conn: conn, reader: bufio.NewReader(conn)}, nil
}

// ReadRow reads one line-delimited JSON object and decodes it into a Row
// matching the declared shape. A read that does not complete before ctx's
// deadline surfaces as ForeignInputTimeout.
func (c *NetClient) ReadRow(ctx context.Context) (*row.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(dl)
	}

	line, err := c.reader.ReadString('\n')
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, springqlerr.Wrap(springqlerr.ForeignInputTimeout, err, "no row from %s within timeout", c.addr)
		}
		return nil, springqlerr.Wrap(springqlerr.ForeignIo, err, "reading from %s", c.addr)
	}

	return decodeJSONRow(c.shape, line)
}

// WriteRow encodes r as one JSON object followed by a newline and writes it
// to the connection.
func (c *NetClient) WriteRow(ctx context.Context, r *row.Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
	}

	line, err := encodeJSONRow(r)
	if err != nil {
		return springqlerr.Wrap(springqlerr.ForeignIo, err, "encoding row for %s", c.addr)
	}
	if _, err := c.conn.Write(append(line, '\n')); err != nil {
		return springqlerr.Wrap(springqlerr.ForeignIo, err, "writing to %s", c.addr)
	}
	return nil
}

// Close closes the underlying connection.
func (c *NetClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

func decodeJSONRow(shape *row.StreamShape, line string) (*row.Row, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return nil, springqlerr.Wrap(springqlerr.InvalidFormat, err, "malformed JSON line %q", line)
	}

	values := make(map[row.ColumnName]sql.Value, len(shape.Columns))
	for _, col := range shape.Columns {
		raw, present := obj[string(col.Name)]
		if !present {
			if !col.Nullable {
				return nil, springqlerr.New(springqlerr.Sql, "missing non-null column %q in foreign row", col.Name)
			}
			continue
		}
		v, err := scalarFromJSON(col.Type, raw)
		if err != nil {
			return nil, springqlerr.Wrap(springqlerr.InvalidFormat, err, "column %q", col.Name)
		}
		values[col.Name] = v
	}

	cols, err := row.NewColumns(shape, values)
	if err != nil {
		return nil, springqlerr.Wrap(springqlerr.Sql, err, "foreign row does not match stream shape")
	}
	return row.NewRow(shape, cols, sql.Now()), nil
}

func scalarFromJSON(t sql.Type, raw interface{}) (sql.Value, error) {
	if raw == nil {
		return sql.Null, nil
	}
	switch t {
	case sql.TypeTimestamp:
		s, ok := raw.(string)
		if !ok {
			return sql.Value{}, fmt.Errorf("expected a string timestamp, got %T", raw)
		}
		ts, err := sql.ParseTimestamp(s)
		if err != nil {
			return sql.Value{}, err
		}
		return sql.NewTimestamp(ts), nil
	case sql.TypeText:
		s, ok := raw.(string)
		if !ok {
			return sql.Value{}, fmt.Errorf("expected a string, got %T", raw)
		}
		return sql.NewText(s), nil
	case sql.TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return sql.Value{}, fmt.Errorf("expected a boolean, got %T", raw)
		}
		return sql.NewBoolean(b), nil
	case sql.TypeSmallInt, sql.TypeInteger, sql.TypeBigInt:
		f, ok := raw.(float64)
		if !ok {
			return sql.Value{}, fmt.Errorf("expected a number, got %T", raw)
		}
		return sql.NewBigInt(int64(f)), nil
	case sql.TypeFloat:
		f, ok := raw.(float64)
		if !ok {
			return sql.Value{}, fmt.Errorf("expected a number, got %T", raw)
		}
		return sql.NewFloat(float32(f)), nil
	default:
		return sql.Value{}, fmt.Errorf("unsupported column type %v", t)
	}
}

func encodeJSONRow(r *row.Row) ([]byte, error) {
	obj := make(map[string]interface{}, len(r.Columns()))
	for name, v := range r.Columns() {
		if v.IsNull() {
			obj[string(name)] = nil
			continue
		}
		obj[string(name)] = v.Interface()
	}
	return json.Marshal(obj)
}
