// Package config loads and validates the `otter.toml` project manifest that
// anchors an OtterLang module root, following src/mods/load.go's TOML
// decode-then-validate shape.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// ManifestFileName is the fixed name of a module's manifest file.
const ManifestFileName = "otter.toml"

// tomlManifest mirrors the on-disk TOML shape of otter.toml.
type tomlManifest struct {
	Package  tomlPackage   `toml:"package"`
	Profiles []tomlProfile `toml:"profiles"`
	Deps     []tomlFfiDep  `toml:"ffi-deps"`
}

type tomlPackage struct {
	Name         string `toml:"name"`
	OtterVersion string `toml:"otter-version"`
	Entry        string `toml:"entry"`
}

type tomlProfile struct {
	Name         string `toml:"name"`
	TargetOS     string `toml:"target-os"`
	TargetArch   string `toml:"target-arch"`
	Debug        bool   `toml:"debug"`
	Optimization string `toml:"optimization"`
	OutputPath   string `toml:"output"`
	Default      bool   `toml:"default"`
}

// tomlFfiDep declares an external symbol the FFI oracle should resolve
// without needing a real header/library on disk (spec.md §6).
type tomlFfiDep struct {
	Symbol     string   `toml:"symbol"`
	ReturnType string   `toml:"returns"`
	ParamTypes []string `toml:"params"`
}

// Project is the validated, in-memory form of a module's manifest.
type Project struct {
	Root         string
	Name         string
	OtterVersion string
	Entry        string
	Profiles     []Profile
	FfiDeps      []FfiDep
}

// Profile is one named build configuration.
type Profile struct {
	Name         string
	TargetOS     string
	TargetArch   string
	Debug        bool
	Optimization string
	OutputPath   string
	Default      bool
}

// OptimizationNone is the optimization level a profile gets when its
// manifest entry leaves `optimization` unspecified.
const OptimizationNone = "none"

// FfiDep is one externally-declared FFI symbol signature.
type FfiDep struct {
	Symbol     string
	ReturnType string
	ParamTypes []string
}

// CurrentVersion is the compiler's own version string, checked against a
// manifest's declared `otter-version` for a non-fatal compatibility warning.
const CurrentVersion = "0.1.0"

// Load reads and validates the manifest at root/otter.toml.
func Load(root string) (*Project, error) {
	path := filepath.Join(root, ManifestFileName)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open manifest at %s: %w", path, err)
	}
	defer f.Close()

	buf, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest at %s: %w", path, err)
	}

	var tm tomlManifest
	if err := toml.Unmarshal(buf, &tm); err != nil {
		return nil, fmt.Errorf("error parsing manifest at %s: %w", path, err)
	}

	proj := &Project{Root: root}
	if err := validate(proj, &tm); err != nil {
		return nil, err
	}
	return proj, nil
}

func validate(proj *Project, tm *tomlManifest) error {
	if tm.Package.Name == "" {
		return fmt.Errorf("missing package name in manifest at %s", proj.Root)
	}
	if !isValidIdentifier(tm.Package.Name) {
		return fmt.Errorf("package name %q must be a valid identifier", tm.Package.Name)
	}

	proj.Name = tm.Package.Name
	proj.OtterVersion = tm.Package.OtterVersion
	proj.Entry = tm.Package.Entry
	if proj.Entry == "" {
		proj.Entry = "main.otter"
	}

	defaultCount := 0
	for _, tp := range tm.Profiles {
		if tp.Name == "" {
			return fmt.Errorf("profile in manifest at %s is missing a name", proj.Root)
		}
		if tp.OutputPath == "" {
			return fmt.Errorf("profile %q must specify an output path", tp.Name)
		}
		if tp.Default {
			defaultCount++
		}
		opt := tp.Optimization
		if opt == "" {
			opt = OptimizationNone
		}
		proj.Profiles = append(proj.Profiles, Profile{
			Name:         tp.Name,
			TargetOS:     tp.TargetOS,
			TargetArch:   tp.TargetArch,
			Debug:        tp.Debug,
			Optimization: opt,
			OutputPath:   tp.OutputPath,
			Default:      tp.Default,
		})
	}
	if defaultCount > 1 {
		return fmt.Errorf("manifest at %s declares more than one default profile", proj.Root)
	}

	for _, td := range tm.Deps {
		if td.Symbol == "" {
			return fmt.Errorf("ffi-deps entry in manifest at %s is missing a symbol name", proj.Root)
		}
		proj.FfiDeps = append(proj.FfiDeps, FfiDep{
			Symbol:     td.Symbol,
			ReturnType: td.ReturnType,
			ParamTypes: td.ParamTypes,
		})
	}

	return nil
}

// SelectProfile finds the named profile, or the sole profile marked default
// if name is empty. Grounded on src/mods/load.go's selectProfile, simplified
// since OtterLang has no sub-module profile merging.
func (p *Project) SelectProfile(name string) (*Profile, error) {
	if name != "" {
		for i := range p.Profiles {
			if p.Profiles[i].Name == name {
				return &p.Profiles[i], nil
			}
		}
		return nil, fmt.Errorf("manifest %q has no profile %q", p.Name, name)
	}

	for i := range p.Profiles {
		if p.Profiles[i].Default {
			return &p.Profiles[i], nil
		}
	}
	if len(p.Profiles) == 1 {
		return &p.Profiles[0], nil
	}
	return nil, fmt.Errorf("manifest %q does not specify a default profile; a --profile argument is required", p.Name)
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if i == 0 && !(c == '_' || isAlpha(c)) {
			return false
		}
		if i > 0 && !(c == '_' || isAlpha(c) || isDigit(c)) {
			return false
		}
	}
	return true
}

func isAlpha(c rune) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c rune) bool { return c >= '0' && c <= '9' }
