package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/justyntemme/dsptemp/pkg/framework/param"
)

func newRegistry(t *testing.T) *param.Registry {
	t.Helper()
	r := param.NewRegistry()
	if err := r.Add(
		param.GainParameter(0, "input", "Input", -60, 24, 0).Build(),
		param.TimeParameter(1, "attck", "Attck", 0.1, 200, 50).Build(),
		param.BypassParameter(2, "bypass", "Bypass").Build(),
	); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return r
}

func TestSaveLoadRoundTrip(t *testing.T) {
	src := newRegistry(t)
	_ = src.SetPlain("input", -12)
	_ = src.SetPlain("attck", 5)
	_ = src.SetBool("bypass", true)

	var buf bytes.Buffer
	if err := NewManager(src).Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := newRegistry(t)
	notified := map[string]float64{}
	for _, key := range []string{"input", "attck"} {
		if _, err := dst.AddListener(key, func(k string, v float64) { notified[k] = v }); err != nil {
			t.Fatalf("AddListener: %v", err)
		}
	}

	if err := NewManager(dst).Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, key := range []string{"input", "attck"} {
		want, _ := src.RawValue(key)
		got, _ := dst.RawValue(key)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s = %f, want %f", key, got, want)
		}
		if math.Abs(notified[key]-want) > 1e-9 {
			t.Errorf("listener for %s saw %f, want %f", key, notified[key], want)
		}
	}
	if !dst.GetByKey("bypass").GetBool() {
		t.Error("bypass not restored")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	m := NewManager(newRegistry(t))

	if err := m.Load(bytes.NewReader([]byte("NOTSTATE"))); !errors.Is(err, ErrInvalidState) {
		t.Errorf("bad header error = %v", err)
	}
	if err := m.Load(bytes.NewReader([]byte("DSP"))); !errors.Is(err, ErrInvalidState) {
		t.Errorf("short header error = %v", err)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(99))

	err := NewManager(newRegistry(t)).Load(&buf)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("newer version error = %v, want ErrInvalidState", err)
	}
}

func TestLoadTruncatedLeavesValuesUntouched(t *testing.T) {
	src := newRegistry(t)
	_ = src.SetPlain("input", -12)
	_ = src.SetPlain("attck", 5)

	var buf bytes.Buffer
	if err := NewManager(src).Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Header, version, count, the first pair and half of the second
	cut := len(magic) + 4 + 4 + 12 + 6

	dst := newRegistry(t)
	fired := 0
	for _, key := range []string{"input", "attck", "bypass"} {
		if _, err := dst.AddListener(key, func(string, float64) { fired++ }); err != nil {
			t.Fatalf("AddListener: %v", err)
		}
	}

	err := NewManager(dst).Load(bytes.NewReader(buf.Bytes()[:cut]))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("truncated error = %v, want ErrInvalidState", err)
	}
	if got, _ := dst.RawValue("input"); got != 0 {
		t.Errorf("input = %f, want default 0", got)
	}
	if fired != 0 {
		t.Errorf("listeners fired %d times on a failed load", fired)
	}
}

func TestLoadSkipsUnknownParameters(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(1))
	_ = binary.Write(&buf, binary.LittleEndian, int32(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(42))
	_ = binary.Write(&buf, binary.LittleEndian, 0.25)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0))
	_ = binary.Write(&buf, binary.LittleEndian, 0.0)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0))

	r := newRegistry(t)
	if err := NewManager(r).Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, _ := r.RawValue("input"); got != -60 {
		t.Errorf("input = %f, want -60", got)
	}
}

func TestCustomState(t *testing.T) {
	var saved []byte
	src := NewManager(newRegistry(t))
	src.SetCustomStateFuncs(func(w io.Writer) error {
		_, err := w.Write([]byte("program:0"))
		return err
	}, nil)

	var buf bytes.Buffer
	if err := src.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	noLoader := newRegistry(t)
	dst := NewManager(noLoader)
	if err := dst.Load(bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrInvalidState) {
		t.Errorf("missing loader error = %v", err)
	}
	if got, _ := noLoader.RawValue("input"); got != 0 {
		t.Errorf("input = %f after rejected load, want 0", got)
	}

	dst.SetCustomStateFuncs(nil, func(r io.Reader) error {
		var err error
		saved, err = io.ReadAll(r)
		return err
	})
	if err := dst.Load(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(saved) != "program:0" {
		t.Errorf("custom data = %q", saved)
	}
}
