// Hand-written mock in the shape mockgen generates, for the
// fetchCallbackCaller interface declared below.

package candlefetch

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"oraclehouse/candlecache/candlemodel"
)

// fetchCallbackCaller exists only so FetchCallback (a function type) has a
// method to mock; gomock works against interfaces.
type fetchCallbackCaller interface {
	Call(ctx context.Context, symbol string, period candlemodel.Period, startTime *int64, count int, params map[string]any) ([]candlemodel.CandleRow, error)
}

// MockFetchCallback is a mock of fetchCallbackCaller.
type MockFetchCallback struct {
	ctrl     *gomock.Controller
	recorder *MockFetchCallbackMockRecorder
}

// MockFetchCallbackMockRecorder is the mock recorder for MockFetchCallback.
type MockFetchCallbackMockRecorder struct {
	mock *MockFetchCallback
}

// NewMockFetchCallback creates a new mock instance.
func NewMockFetchCallback(ctrl *gomock.Controller) *MockFetchCallback {
	mock := &MockFetchCallback{ctrl: ctrl}
	mock.recorder = &MockFetchCallbackMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockFetchCallback) EXPECT() *MockFetchCallbackMockRecorder {
	return m.recorder
}

// Call mocks base method.
func (m *MockFetchCallback) Call(ctx context.Context, symbol string, period candlemodel.Period, startTime *int64, count int, params map[string]any) ([]candlemodel.CandleRow, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Call", ctx, symbol, period, startTime, count, params)
	ret0, _ := ret[0].([]candlemodel.CandleRow)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Call indicates an expected call of Call.
func (mr *MockFetchCallbackMockRecorder) Call(ctx, symbol, period, startTime, count, params any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Call", reflect.TypeOf((*MockFetchCallback)(nil).Call), ctx, symbol, period, startTime, count, params)
}

// AsFetchCallback adapts the mock to the FetchCallback function type.
func (m *MockFetchCallback) AsFetchCallback() FetchCallback {
	return m.Call
}
