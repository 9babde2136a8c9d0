package config

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "canlog.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, `
[log]
level  = debug
format = json

[metrics]
addr = :9100

[asc]
timestamp4 = true
crlf       = false
fd-format  = true
no-rtr-dlc = false

[channels]
can0  = 1
vcan0 = 3
`)
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.LogLevel != "debug" || f.LogFormat != "json" {
		t.Errorf("log section %+v", f)
	}
	if f.MetricsAddr != ":9100" {
		t.Errorf("metrics addr %q", f.MetricsAddr)
	}
	if !f.ASCTimestamp4 || f.ASCCRLF || !f.ASCFDFormat || f.ASCNoRTRDLC {
		t.Errorf("asc section %+v", f)
	}
	if f.Channels["can0"] != 1 || f.Channels["vcan0"] != 3 {
		t.Errorf("channels %+v", f.Channels)
	}
}

func TestLoad_Empty(t *testing.T) {
	f, err := Load(write(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if f.LogLevel != "" || f.MetricsAddr != "" || len(f.Channels) != 0 {
		t.Errorf("defaults %+v", f)
	}
}

func TestLoad_InvalidLevel(t *testing.T) {
	if _, err := Load(write(t, "[log]\nlevel = loud\n")); err == nil {
		t.Error("invalid level accepted")
	}
}

func TestLoad_InvalidChannel(t *testing.T) {
	if _, err := Load(write(t, "[channels]\ncan0 = 0\n")); err == nil {
		t.Error("channel 0 accepted")
	}
	if _, err := Load(write(t, "[channels]\ncan0 = x\n")); err == nil {
		t.Error("non-numeric channel accepted")
	}
}

func TestInterfaces(t *testing.T) {
	f := &File{Channels: map[string]int{"can0": 1, "vcan0": 3}}
	got := f.Interfaces()
	if len(got) != 3 || got[0] != "can0" || got[1] != "" || got[2] != "vcan0" {
		t.Errorf("Interfaces() = %q", got)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.ini")); err == nil {
		t.Error("missing file accepted")
	}
}
