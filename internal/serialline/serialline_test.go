package serialline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	rts, dtr bool
	calls    []string
	err      error
	closed   bool
}

func (f *fakePort) SetRTS(v bool) error {
	if f.err != nil {
		return f.err
	}
	f.rts = v
	f.calls = append(f.calls, record("rts", v))
	return nil
}

func (f *fakePort) SetDTR(v bool) error {
	if f.err != nil {
		return f.err
	}
	f.dtr = v
	f.calls = append(f.calls, record("dtr", v))
	return nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func record(sig string, v bool) string {
	if v {
		return sig + "+"
	}
	return sig + "-"
}

func withFakePort(t *testing.T) *fakePort {
	t.Helper()
	fp := &fakePort{}
	orig := openPort
	openPort = func(string) (modemPort, error) { return fp, nil }
	t.Cleanup(func() { openPort = orig })
	return fp
}

func TestParseSignal(t *testing.T) {
	tests := []struct {
		in      string
		want    Signal
		wantErr bool
	}{
		{"rts", RTS, false},
		{"DTR", DTR, false},
		{" Rts ", RTS, false},
		{"cts", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSignal(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestLinesDriveTheirSignals(t *testing.T) {
	fp := withFakePort(t)

	p, err := Open("/dev/ttyUSB0")
	require.NoError(t, err)
	key, err := p.Line(RTS)
	require.NoError(t, err)
	ptt, err := p.Line(DTR)
	require.NoError(t, err)

	require.NoError(t, ptt.Set(true))
	require.NoError(t, key.Set(true))
	assert.True(t, fp.rts)
	assert.True(t, fp.dtr)
	assert.True(t, key.High())

	require.NoError(t, key.Set(false))
	assert.False(t, fp.rts)
	assert.True(t, fp.dtr)
	assert.Equal(t, []string{"dtr+", "rts+", "rts-"}, fp.calls)
}

func TestLineIsShared(t *testing.T) {
	withFakePort(t)
	p, err := Open("/dev/ttyUSB0")
	require.NoError(t, err)

	a, err := p.Line(RTS)
	require.NoError(t, err)
	b, err := p.Line(RTS)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = p.Line("cts")
	assert.Error(t, err)
}

func TestCloseLowersLines(t *testing.T) {
	fp := withFakePort(t)
	p, err := Open("/dev/ttyUSB0")
	require.NoError(t, err)
	key, _ := p.Line(RTS)
	ptt, _ := p.Line(DTR)
	require.NoError(t, key.Set(true))
	require.NoError(t, ptt.Set(true))

	require.NoError(t, p.Close())

	assert.False(t, fp.rts)
	assert.False(t, fp.dtr)
	assert.True(t, fp.closed)
}

func TestSetErrorKeepsState(t *testing.T) {
	fp := withFakePort(t)
	p, err := Open("/dev/ttyUSB0")
	require.NoError(t, err)
	key, _ := p.Line(RTS)

	fp.err = errors.New("device gone")
	err = key.Set(true)

	assert.ErrorIs(t, err, fp.err)
	assert.False(t, key.High())
}

func TestOpenError(t *testing.T) {
	orig := openPort
	openPort = func(string) (modemPort, error) { return nil, errors.New("no such file") }
	t.Cleanup(func() { openPort = orig })

	_, err := Open("/dev/missing")
	assert.ErrorContains(t, err, "open serial /dev/missing")
}
