package gate

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"sync"
)

// Channel wraps the raw duplex byte stream to the hardware. A background
// goroutine decodes inbound lines into Messages; writes are serialized
// under a mutex so command bytes and handshake lines never interleave.
//
// Messages is closed when the underlying stream ends, which a station
// treats as a hardware disconnect.
type Channel struct {
	rwc  io.ReadWriteCloser
	msgs chan Message

	logger *log.Logger

	writeMu sync.Mutex
}

func NewChannel(rwc io.ReadWriteCloser, logger *log.Logger) *Channel {
	c := &Channel{
		rwc:    rwc,
		msgs:   make(chan Message, 64),
		logger: logger,
	}
	go c.readLoop()
	return c
}

// Messages returns the inbound message stream.
func (c *Channel) Messages() <-chan Message { return c.msgs }

// Command writes a single command byte.
func (c *Channel) Command(b byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.rwc.Write([]byte{b}); err != nil {
		return fmt.Errorf("write command %q: %w", b, err)
	}
	return nil
}

// SendLine writes a CRLF-terminated text line.
func (c *Channel) SendLine(s string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := io.WriteString(c.rwc, s+"\r\n"); err != nil {
		return fmt.Errorf("write line %q: %w", s, err)
	}
	return nil
}

// Close tears down the stream; the read loop exits and Messages closes.
func (c *Channel) Close() error {
	return c.rwc.Close()
}

func (c *Channel) readLoop() {
	defer close(c.msgs)

	sc := bufio.NewScanner(c.rwc)
	for sc.Scan() {
		msg := ParseMessage(sc.Text())
		if msg.Kind == KindUnknown && msg.Raw != "" {
			c.logger.Printf("gate: unrecognized line %q", msg.Raw)
		}
		c.msgs <- msg
	}
	if err := sc.Err(); err != nil {
		c.logger.Printf("gate: channel read ended: %v", err)
	}
}
