package sftp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

var errInjected = errors.New("injected failure")

// fakeServer is an in-memory exchange directory. visible records every name that ever
// held content, so tests can check the final name only appeared once complete.
type fakeServer struct {
	mu       sync.Mutex
	files    map[string][]byte
	observed map[string][][]byte
	dials    int

	dialErr   error
	createErr error
	writeErr  error
	renameErr error

	// blockWrite parks Write until the session is closed.
	blockWrite bool
	writing    chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		files:    make(map[string][]byte),
		observed: make(map[string][][]byte),
		writing:  make(chan struct{}, 1),
	}
}

func (s *fakeServer) dial(_ context.Context) (session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dials++
	if s.dialErr != nil {
		return nil, s.dialErr
	}
	return &fakeSession{server: s, closed: make(chan struct{})}, nil
}

func (s *fakeServer) file(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	return b, ok
}

func (s *fakeServer) snapshot(name string) [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.observed[name]
}

func (s *fakeServer) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

func (s *fakeServer) put(name string, content []byte) {
	s.files[name] = content
	s.observed[name] = append(s.observed[name], bytes.Clone(content))
}

type fakeSession struct {
	server    *fakeServer
	closeOnce sync.Once
	closed    chan struct{}
}

func (f *fakeSession) Create(path string) (io.WriteCloser, error) {
	f.server.mu.Lock()
	defer f.server.mu.Unlock()
	if f.server.createErr != nil {
		return nil, f.server.createErr
	}
	f.server.put(path, nil)
	return &fakeFile{session: f, path: path}, nil
}

func (f *fakeSession) PosixRename(oldname, newname string) error {
	f.server.mu.Lock()
	defer f.server.mu.Unlock()
	if f.server.renameErr != nil {
		return f.server.renameErr
	}
	content, ok := f.server.files[oldname]
	if !ok {
		return errors.New("no such file")
	}
	delete(f.server.files, oldname)
	f.server.put(newname, content)
	return nil
}

func (f *fakeSession) Remove(path string) error {
	f.server.mu.Lock()
	defer f.server.mu.Unlock()
	delete(f.server.files, path)
	return nil
}

func (f *fakeSession) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

type fakeFile struct {
	session *fakeSession
	path    string
	buf     bytes.Buffer
}

func (f *fakeFile) Write(p []byte) (int, error) {
	server := f.session.server
	if server.blockWrite {
		server.writing <- struct{}{}
		<-f.session.closed
		return 0, errors.New("connection lost")
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	if server.writeErr != nil {
		// Half the payload lands before the failure.
		half := p[:len(p)/2]
		f.buf.Write(half)
		server.put(f.path, bytes.Clone(f.buf.Bytes()))
		return len(half), server.writeErr
	}
	n, _ := f.buf.Write(p)
	server.put(f.path, bytes.Clone(f.buf.Bytes()))
	return n, nil
}

func (f *fakeFile) Close() error {
	return nil
}
