package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
database:
  driver: postgres
  host: localhost
  port: 5432
  user: gmsweep
  password: secret
  name: sweeps
simulator:
  path: /opt/ngspice/bin/ngspice
  temperature: 85
pdk:
  root: /opt/pdk
  cornerLib: ihp-sg13g2/libs.tech/ngspice/models/cornerMOSlv.lib
  section: mos_ff
sweep:
  outputDir: /tmp/luts
  workers: 2
  timeoutSeconds: 30
  retries: 1
devices:
  - name: sg13_lv_nmos
    symbol: n.x1.nsg13_lv_nmos
    axes:
      length:
        values: [0.13e-6, 0.5e-6]
      vgs:
        start: 0
        stop: 1.5
        step: 0.01
      vds:
        values: [0.6]
      vbs:
        values: [0]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d", cfg.Server.Port)
	}
	if cfg.Simulator.Path != "/opt/ngspice/bin/ngspice" || cfg.Simulator.Temperature != 85 {
		t.Errorf("simulator = %+v", cfg.Simulator)
	}
	if cfg.PDK.Section != "mos_ff" {
		t.Errorf("pdk section = %q", cfg.PDK.Section)
	}
	if cfg.Sweep.Workers != 2 || cfg.Sweep.Retries != 1 {
		t.Errorf("sweep = %+v", cfg.Sweep)
	}
	if got := cfg.JobTimeout(); got != 30*time.Second {
		t.Errorf("job timeout = %s", got)
	}

	d := cfg.Devices[0]
	if d.Name != "sg13_lv_nmos" || d.Symbol != "n.x1.nsg13_lv_nmos" {
		t.Errorf("device = %+v", d)
	}
	if len(d.Axes.Length.Values) != 2 || d.Axes.VGS.Step != 0.01 {
		t.Errorf("axes = %+v", d.Axes)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("PDK_ROOT", "/home/user/pdk")
	path := writeConfig(t, `
devices:
  - name: sg13_lv_nmos
    axes:
      length:
        values: [0.13e-6]
      vgs:
        values: [0.75]
      vds:
        values: [0.6]
      vbs:
        values: [0]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulator.Path != "ngspice" {
		t.Errorf("simulator path = %q", cfg.Simulator.Path)
	}
	if cfg.Simulator.Temperature != 27 {
		t.Errorf("temperature = %g", cfg.Simulator.Temperature)
	}
	if cfg.PDK.Root != "/home/user/pdk" {
		t.Errorf("pdk root = %q", cfg.PDK.Root)
	}
	if cfg.PDK.Section != "mos_tt" {
		t.Errorf("pdk section = %q", cfg.PDK.Section)
	}
	if cfg.Sweep.OutputDir != "data" {
		t.Errorf("output dir = %q", cfg.Sweep.OutputDir)
	}
	if cfg.Sweep.Workers != DefaultWorkers() {
		t.Errorf("workers = %d", cfg.Sweep.Workers)
	}
	if got := cfg.JobTimeout(); got != 120*time.Second {
		t.Errorf("job timeout = %s", got)
	}

	d := cfg.Devices[0]
	if d.Instance != "x1" || d.Width != 10e-6 || d.NG != 1 || d.M != 1 {
		t.Errorf("device defaults = %+v", d)
	}
}

func TestLoadRejectsEmptyDeviceList(t *testing.T) {
	path := writeConfig(t, `
sweep:
  workers: 2
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty device list")
	}
}

func TestLoadRejectsUnnamedDevice(t *testing.T) {
	path := writeConfig(t, `
devices:
  - width: 5e-6
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for device without name")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultWorkersIsCapped(t *testing.T) {
	n := DefaultWorkers()
	if n < 1 || n > 4 {
		t.Errorf("workers = %d, want 1..4", n)
	}
}

func TestDSNHelpers(t *testing.T) {
	var cfg Config
	cfg.Database.Host = "db.local"
	cfg.Database.Port = 3306
	cfg.Database.User = "sweeper"
	cfg.Database.Password = "pw"
	cfg.Database.Name = "runs"

	want := "sweeper:pw@tcp(db.local:3306)/runs?parseTime=true&charset=utf8mb4&loc=UTC"
	if got := cfg.MySQLDSN(); got != want {
		t.Errorf("mysql dsn = %q", got)
	}

	cfg.Database.Port = 5432
	want = "host=db.local port=5432 user=sweeper password=pw dbname=runs sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("postgres dsn = %q", got)
	}
}
