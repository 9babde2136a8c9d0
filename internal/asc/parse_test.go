package asc

import (
	"errors"
	"testing"
	"time"

	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/compact"
	"github.com/cantools/canlog/internal/timeval"
)

func feed(t *testing.T, p *Parser, lines ...string) []*Record {
	t.Helper()
	var recs []*Record
	for _, line := range lines {
		rec, err := p.ParseLine(line)
		if err != nil {
			t.Fatalf("ParseLine(%q): %v", line, err)
		}
		if rec != nil {
			recs = append(recs, rec)
		}
	}
	return recs
}

func TestHeader_BaseAndTimestamps(t *testing.T) {
	var p Parser
	feed(t, &p, "base hex  timestamps absolute")
	if p.Hdr.Base != 'h' || p.Hdr.Timestamps != 'a' {
		t.Errorf("header %+v", p.Hdr)
	}

	var q Parser
	feed(t, &q, "base dez  timestamps relative")
	if q.Hdr.Base != 'd' || q.Hdr.Timestamps != 'r' {
		t.Errorf("header %+v", q.Hdr)
	}
}

func TestHeader_Invalid(t *testing.T) {
	var p Parser
	if _, err := p.ParseLine("base foo  timestamps absolute"); !errors.Is(err, can.ErrMalformed) {
		t.Errorf("err = %v", err)
	}
	var q Parser
	if _, err := q.ParseLine("base hex  timestamps sometimes"); !errors.Is(err, can.ErrMalformed) {
		t.Errorf("err = %v", err)
	}
}

func TestHeader_Date(t *testing.T) {
	var p Parser
	feed(t, &p, "date Sat Sep 30 15:06:13.191 2023")
	want := timeval.FromTime(time.Date(2023, time.September, 30, 15, 6, 13, 191_000_000, time.Local))
	if p.Hdr.Date != want {
		t.Errorf("date %+v, want %+v", p.Hdr.Date, want)
	}

	// am/pm variant, lowercase marker
	var q Parser
	feed(t, &q, "date Sat Sep 30 3:06:13 pm 2023")
	want = timeval.FromTime(time.Date(2023, time.September, 30, 15, 6, 13, 0, time.Local))
	if q.Hdr.Date != want {
		t.Errorf("date %+v, want %+v", q.Hdr.Date, want)
	}
}

func TestParse_ClassicDataLine(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"no internal events logged",
		"0.002367 1 390x Rx d 8 17 00 14 00 C0 00 08 00",
	)
	if len(recs) != 1 {
		t.Fatalf("got %d records", len(recs))
	}
	r := recs[0]
	if p.Hdr.DPlace != 6 {
		t.Errorf("dplace %d", p.Hdr.DPlace)
	}
	if r.TV != (timeval.Time{Sec: 0, USec: 2367}) {
		t.Errorf("tv %+v", r.TV)
	}
	if r.Channel != 1 || r.Dir != 'R' {
		t.Errorf("channel/dir %+v", r)
	}
	want, _ := can.NewCC(0x390, true, []byte{0x17, 0, 0x14, 0, 0xC0, 0, 8, 0})
	if !r.Frame.Equal(&want) {
		t.Errorf("frame %+v", r.Frame)
	}
}

func TestParse_DecimalBase(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base dez  timestamps absolute",
		"0.100000 1 912 Tx d 2 17 32",
	)
	if len(recs) != 1 {
		t.Fatal("no record")
	}
	want, _ := can.NewCC(0x390, false, []byte{0x11, 0x20})
	if !recs[0].Frame.Equal(&want) {
		t.Errorf("frame %+v", recs[0].Frame)
	}
	if recs[0].Dir != 'T' {
		t.Errorf("dir %c", recs[0].Dir)
	}
}

func TestParse_RTRLines(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.100000 2 123 Rx r",
		"0.200000 2 123 Rx r 5",
	)
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].Frame.ID != 0x123|can.RTRFlag || recs[0].Frame.Len != 0 {
		t.Errorf("bare RTR %+v", recs[0].Frame)
	}
	if recs[1].Frame.Len != 5 {
		t.Errorf("RTR with DLC %+v", recs[1].Frame)
	}
}

func TestParse_ErrorFrameLine(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.002367 1 ErrorFrame",
	)
	if len(recs) != 1 {
		t.Fatal("no record")
	}
	f := recs[0].Frame
	if !f.IsError() || f.ID != can.ErrBusError|can.ErrFlag {
		t.Errorf("frame %+v", f)
	}
	if recs[0].Dir != 0 {
		t.Errorf("dir %c", recs[0].Dir)
	}
}

func TestParse_CANFDLine(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.002367 CANFD 1 Rx 300 1 0 8 8 01 02 03 04 05 06 07 08 130000 130 3000 0 0 0 0 0",
	)
	if len(recs) != 1 {
		t.Fatal("no record")
	}
	want, _ := can.NewFD(0x300, false, can.FDBRS, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	if !recs[0].Frame.Equal(&want) {
		t.Errorf("frame %+v", recs[0].Frame)
	}
}

func TestParse_CANFDLine_SymbolicName(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.002367 CANFD 1 Rx 300 EngineData 1 0 8 8 01 02 03 04 05 06 07 08 130000 130 3000 0 0 0 0 0",
	)
	if len(recs) != 1 {
		t.Fatal("no record")
	}
	want, _ := can.NewFD(0x300, false, can.FDBRS, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	if !recs[0].Frame.Equal(&want) {
		t.Errorf("frame %+v", recs[0].Frame)
	}
}

func TestParse_CANFDLine_ClassicContent(t *testing.T) {
	// FDF clear in the flags word: the line carries a classic frame
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.002367 CANFD 1 Rx 123 0 0 2 2 AA BB 130000 130 0 0 0 0 0 0",
	)
	if len(recs) != 1 {
		t.Fatal("no record")
	}
	want, _ := can.NewCC(0x123, false, []byte{0xAA, 0xBB})
	if !recs[0].Frame.Equal(&want) {
		t.Errorf("frame %+v", recs[0].Frame)
	}
}

func TestParse_CANFDLine_RTRContent(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.002367 CANFD 1 Tx 123 0 0 7 0 130000 130 10 0 0 0 0 0",
	)
	if len(recs) != 1 {
		t.Fatal("no record")
	}
	f := recs[0].Frame
	if !f.IsRTR() || f.Len != 7 {
		t.Errorf("frame %+v", f)
	}
}

func TestParse_CANFDLine_RTRRawDLC(t *testing.T) {
	// a classic RTR carried in CANFD format with DLC 9..15 keeps the raw
	// DLC beside the capped 8-byte length, so the compact form round-trips
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.002367 CANFD 1 Tx 123 0 0 9 0 130000 130 10 0 0 0 0 0",
	)
	if len(recs) != 1 {
		t.Fatal("no record")
	}
	f := recs[0].Frame
	if !f.IsRTR() || f.Len != 8 || f.Len8DLC != 9 {
		t.Errorf("frame %+v", f)
	}
	if got, want := compact.Sprint(&f, false), "123#R8_9"; got != want {
		t.Errorf("compact form %q, want %q", got, want)
	}
}

func TestParse_TrailingFrameAttributes(t *testing.T) {
	// measurement attributes after the payload are part of the format
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.002367 1 390x Rx d 8 17 00 14 00 C0 00 08 00  Length = 233910 BitCount = 121 ID = 912x",
		"0.003000 1 123 Rx r 5  Length = 133910 BitCount = 69 ID = 291",
		"0.004000 1 123 Rx r  Length = 133910 BitCount = 69 ID = 291",
	)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	want, _ := can.NewCC(0x390, true, []byte{0x17, 0, 0x14, 0, 0xC0, 0, 8, 0})
	if !recs[0].Frame.Equal(&want) {
		t.Errorf("data frame %+v", recs[0].Frame)
	}
	if !recs[1].Frame.IsRTR() || recs[1].Frame.Len != 5 {
		t.Errorf("RTR with DLC %+v", recs[1].Frame)
	}
	if !recs[2].Frame.IsRTR() || recs[2].Frame.Len != 0 {
		t.Errorf("bare RTR %+v", recs[2].Frame)
	}
}

func TestParse_ExtraPayloadByteRejected(t *testing.T) {
	// a trailing token that still reads as a data byte contradicts the DLC
	var p Parser
	feed(t, &p, "base hex  timestamps absolute", "0.001000 1 123 Rx d 1 AA")
	rec, err := p.ParseLine("0.002000 1 123 Rx d 2 11 22 33")
	if rec != nil || err != nil {
		t.Errorf("got rec=%+v err=%v, want line dropped", rec, err)
	}
}

func TestParse_DPlaceScaling(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.0001 1 123 Rx d 1 00",
	)
	if p.Hdr.DPlace != 4 {
		t.Fatalf("dplace %d", p.Hdr.DPlace)
	}
	if recs[0].TV.USec != 100 {
		t.Errorf("usec %d, want 100", recs[0].TV.USec)
	}

	var q Parser
	recs = feed(t, &q,
		"base hex  timestamps absolute",
		"0.00001 1 123 Rx d 1 00",
	)
	if q.Hdr.DPlace != 5 || recs[0].TV.USec != 10 {
		t.Errorf("dplace %d usec %d", q.Hdr.DPlace, recs[0].TV.USec)
	}
}

func TestParse_DPlaceOutOfRange(t *testing.T) {
	var p Parser
	feed(t, &p, "base hex  timestamps absolute")
	if _, err := p.ParseLine("0.123 1 123 Rx d 1 00"); !errors.Is(err, can.ErrMalformed) {
		t.Errorf("err = %v", err)
	}
}

func TestParse_RelativeTimestamps(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps relative",
		"0.600000 1 123 Rx d 1 00",
		"0.600000 1 123 Rx d 1 00",
	)
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].TV != (timeval.Time{Sec: 0, USec: 600_000}) {
		t.Errorf("first tv %+v", recs[0].TV)
	}
	if recs[1].TV != (timeval.Time{Sec: 1, USec: 200_000}) {
		t.Errorf("second tv %+v", recs[1].TV)
	}
}

func TestParse_AbsoluteWithDate(t *testing.T) {
	var p Parser
	feed(t, &p, "date Sat Sep 30 15:06:13 2023", "base hex  timestamps absolute")
	date := timeval.FromTime(time.Date(2023, time.September, 30, 15, 6, 13, 0, time.Local))
	recs := feed(t, &p, "2.000500 1 123 Rx d 1 00")
	want := timeval.Time{Sec: date.Sec + 2, USec: 500}
	if recs[0].TV != want {
		t.Errorf("tv %+v, want %+v", recs[0].TV, want)
	}
}

func TestParse_CANFDErrorFrameIgnored(t *testing.T) {
	// error frames have no CANFD-format representation
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"0.100000 1 123 Rx d 1 AA",
		"0.200000 CANFD 1 Rx ErrorFrame",
	)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
}

func TestParse_GarbageLinesIgnored(t *testing.T) {
	var p Parser
	recs := feed(t, &p,
		"base hex  timestamps absolute",
		"Begin Triggerblock",
		"0.100000 1 123 Rx d 1 AA",
		"0.200000 Statistic: D 1 R 0 XD 0 XR 0 E 0 O 0 B 4.2%",
		"0.300000 1 nothex Rx d 1 AA",
	)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
}
