package errframe

import (
	"errors"
	"strings"
	"testing"

	"github.com/cantools/canlog/internal/can"
)

func errFrame(t *testing.T, class uint32, data ...byte) *can.Frame {
	t.Helper()
	f, err := can.NewErrorFrame(class, data)
	if err != nil {
		t.Fatal(err)
	}
	return &f
}

func TestSprint_Classes(t *testing.T) {
	cases := []struct {
		name  string
		frame *can.Frame
		want  string
	}{
		{"tx-timeout", errFrame(t, can.ErrTxTimeout), "tx-timeout"},
		{"lost-arb", errFrame(t, can.ErrLostArb, 5), "lost-arbitration{at bit 5}"},
		{"controller", errFrame(t, can.ErrCrtl, 0, 0x03),
			"controller-problem{rx-overflow,tx-overflow}"},
		{"protocol", errFrame(t, can.ErrProt, 0, 0, 0x04, 0x03),
			"protocol-violation{{bit-stuffing-error}{start-of-frame}}"},
		{"counters", errFrame(t, can.ErrCnt, 0, 0, 0, 0, 0, 0, 5, 7),
			"error-counter-tx-rx{{5}{7}}"},
		{"bus-off", errFrame(t, can.ErrBusOff), "bus-off"},
		{"restarted", errFrame(t, can.ErrRestarted), "restarted-after-bus-off"},
		{"multiple", errFrame(t, can.ErrTxTimeout|can.ErrAck), "tx-timeout,no-acknowledgement-on-tx"},
	}
	for _, tc := range cases {
		if got := Sprint(tc.frame, ""); got != tc.want {
			t.Errorf("%s:\n got  %q\n want %q", tc.name, got, tc.want)
		}
	}
}

func TestSprint_CounterAppendix(t *testing.T) {
	// non-zero counters without the counter class bit still show up
	f := errFrame(t, can.ErrBusError, 0, 0, 0, 0, 0, 0, 5, 7)
	want := "bus-error,error-counter-tx-rx{{5}{7}}"
	if got := Sprint(f, ""); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// but not when the class bit is set: no double print
	f = errFrame(t, can.ErrCnt, 0, 0, 0, 0, 0, 0, 5, 7)
	if got := Sprint(f, ""); strings.Count(got, "error-counter-tx-rx") != 1 {
		t.Errorf("counter class printed twice: %q", got)
	}
}

func TestSprint_CustomSep(t *testing.T) {
	f := errFrame(t, can.ErrTxTimeout|can.ErrBusOff)
	if got := Sprint(f, "\n\t"); got != "tx-timeout\n\tbus-off" {
		t.Errorf("got %q", got)
	}
}

func TestSprint_NotAnErrorFrame(t *testing.T) {
	f, _ := can.NewCC(0x123, false, []byte{1})
	if got := Sprint(&f, ""); got != "" {
		t.Errorf("got %q for a data frame", got)
	}
	fd, _ := can.NewFD(0x123, false, 0, nil)
	if got := Sprint(&fd, ""); got != "" {
		t.Errorf("got %q for an FD frame", got)
	}
}

func TestSprint_InvalidClass(t *testing.T) {
	f := &can.Frame{Kind: can.KindCC, ID: 0x1000 | can.ErrFlag, Len: 8, Data: make([]byte, 8)}
	if got := Sprint(f, ""); got != "" {
		t.Errorf("got %q for out-of-range class", got)
	}
}

func TestDecode_BufferDiscipline(t *testing.T) {
	f := errFrame(t, can.ErrLostArb, 9)
	want := Sprint(f, "")

	buf := make([]byte, len(want))
	n, err := Decode(buf, f, "")
	if err != nil || n != len(want) || string(buf[:n]) != want {
		t.Errorf("Decode exact fit: n=%d err=%v %q", n, err, buf[:n])
	}

	// one byte short: nothing written
	small := make([]byte, len(want)-1)
	for i := range small {
		small[i] = 'x'
	}
	if n, err := Decode(small, f, ""); n != 0 || !errors.Is(err, can.ErrBufferTooSmall) {
		t.Errorf("Decode short buffer: n=%d err=%v", n, err)
	}
	if strings.Trim(string(small), "x") != "" {
		t.Errorf("short buffer modified: %q", small)
	}

	// a data frame decodes to nothing without an error
	d, _ := can.NewCC(0x123, false, nil)
	if n, err := Decode(buf, &d, ""); n != 0 || err != nil {
		t.Errorf("Decode data frame: n=%d err=%v", n, err)
	}
}
