package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), []byte(contents), 0o644); err != nil {
		t.Fatalf("writing manifest: %s", err)
	}
}

func TestLoadMinimalManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "hello"
`)

	proj, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if proj.Name != "hello" {
		t.Errorf("Name = %q, want %q", proj.Name, "hello")
	}
	if proj.Entry != "main.otter" {
		t.Errorf("Entry = %q, want default %q", proj.Entry, "main.otter")
	}
}

func TestLoadFillsProfileDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "hello"

[[profiles]]
name = "debug"
output = "out-debug.ll"
`)

	proj, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %s", err)
	}
	if len(proj.Profiles) != 1 {
		t.Fatalf("Profiles = %d, want 1", len(proj.Profiles))
	}
	p := proj.Profiles[0]
	if p.Debug != false {
		t.Errorf("Debug = %v, want false", p.Debug)
	}
	if p.Optimization != OptimizationNone {
		t.Errorf("Optimization = %q, want %q", p.Optimization, OptimizationNone)
	}
}

func TestLoadRejectsInvalidPackageName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "123-bad"
`)

	if _, err := Load(dir); err == nil {
		t.Fatal("Load: expected an error for an invalid package name, got nil")
	}
}

func TestLoadRejectsMultipleDefaultProfiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "hello"

[[profiles]]
name = "debug"
output = "out-debug.ll"
default = true

[[profiles]]
name = "release"
output = "out-release.ll"
default = true
`)

	if _, err := Load(dir); err == nil {
		t.Fatal("Load: expected an error for two default profiles, got nil")
	}
}

func TestSelectProfileDefault(t *testing.T) {
	proj := &Project{
		Name: "hello",
		Profiles: []Profile{
			{Name: "debug", OutputPath: "out-debug.ll"},
			{Name: "release", OutputPath: "out-release.ll", Default: true},
		},
	}

	p, err := proj.SelectProfile("")
	if err != nil {
		t.Fatalf("SelectProfile: %s", err)
	}
	if p.Name != "release" {
		t.Errorf("SelectProfile(\"\") = %q, want %q", p.Name, "release")
	}
}

func TestSelectProfileByName(t *testing.T) {
	proj := &Project{
		Name: "hello",
		Profiles: []Profile{
			{Name: "debug", OutputPath: "out-debug.ll"},
			{Name: "release", OutputPath: "out-release.ll", Default: true},
		},
	}

	p, err := proj.SelectProfile("debug")
	if err != nil {
		t.Fatalf("SelectProfile: %s", err)
	}
	if p.Name != "debug" {
		t.Errorf("SelectProfile(\"debug\") = %q, want %q", p.Name, "debug")
	}
}

func TestSelectProfileUnknownName(t *testing.T) {
	proj := &Project{Name: "hello", Profiles: []Profile{{Name: "debug", OutputPath: "out.ll"}}}

	if _, err := proj.SelectProfile("release"); err == nil {
		t.Fatal("SelectProfile: expected an error for an unknown profile name, got nil")
	}
}

func TestSelectProfileAmbiguousWithoutDefault(t *testing.T) {
	proj := &Project{
		Name: "hello",
		Profiles: []Profile{
			{Name: "debug", OutputPath: "out-debug.ll"},
			{Name: "release", OutputPath: "out-release.ll"},
		},
	}

	if _, err := proj.SelectProfile(""); err == nil {
		t.Fatal("SelectProfile: expected an error when no profile is default and more than one exists, got nil")
	}
}
