package net

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// StdioTransport reads one envelope per line from an io.Reader and writes one
// envelope per line to an io.Writer, flushing after each.
type StdioTransport struct {
	logger *logrus.Entry

	r io.Reader

	wLock sync.Mutex
	w     *bufio.Writer

	consumeCh chan Envelope
	err       error

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex
}

// NewStdioTransport ...
func NewStdioTransport(r io.Reader, w io.Writer, logger *logrus.Entry) *StdioTransport {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &StdioTransport{
		logger:     logger,
		r:          r,
		w:          bufio.NewWriter(w),
		consumeCh:  make(chan Envelope, 16),
		shutdownCh: make(chan struct{}),
	}
}

// Listen implements the Transport interface.
func (s *StdioTransport) Listen() {
	go s.listen()
}

func (s *StdioTransport) listen() {
	defer close(s.consumeCh)

	reader := bufio.NewReader(s.r)
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			env, decErr := Decode(line)
			if decErr != nil {
				s.logger.WithField("line", string(bytes.TrimSpace(line))).WithError(decErr).Error("Decoding envelope")
				s.err = decErr
				return
			}
			select {
			case s.consumeCh <- env:
			case <-s.shutdownCh:
				return
			}
		}

		if err == io.EOF {
			s.logger.Debug("Input exhausted")
			return
		}
		if err != nil {
			s.err = errors.Wrap(err, "read input")
			return
		}
	}
}

// Consumer implements the Transport interface.
func (s *StdioTransport) Consumer() <-chan Envelope {
	return s.consumeCh
}

// Err implements the Transport interface. The channel close happens after the
// error is set, so reading it once Consumer is drained is safe.
func (s *StdioTransport) Err() error {
	return s.err
}

// Send implements the Transport interface.
func (s *StdioTransport) Send(env Envelope) error {
	b, err := Encode(env)
	if err != nil {
		return err
	}

	s.shutdownLock.Lock()
	closed := s.shutdown
	s.shutdownLock.Unlock()
	if closed {
		return ErrTransportShutdown
	}

	s.wLock.Lock()
	defer s.wLock.Unlock()

	if _, err := s.w.Write(b); err != nil {
		return errors.Wrap(err, "write output")
	}
	if err := s.w.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}
	return nil
}

// Close implements the Transport interface. A reader blocked on input is left
// alone; it stops at end of input.
func (s *StdioTransport) Close() error {
	s.shutdownLock.Lock()
	defer s.shutdownLock.Unlock()

	if !s.shutdown {
		s.shutdown = true
		close(s.shutdownCh)
		s.wLock.Lock()
		defer s.wLock.Unlock()
		return s.w.Flush()
	}
	return nil
}
