package facemesh

import "github.com/Kagami/go-face"

// MockEngine is a mock implementation of Engine for testing.
type MockEngine struct {
	RecognizeFunc func(data []byte) ([]face.Face, error)
	CloseFunc     func()
}

func (m *MockEngine) Recognize(data []byte) ([]face.Face, error) {
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(data)
	}
	return nil, nil
}

func (m *MockEngine) Close() {
	if m.CloseFunc != nil {
		m.CloseFunc()
	}
}
