// internal/arch/arch_test.go
package arch

import (
	"bytes"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
)

type pkg struct {
	ImportPath string
	Imports    []string
	Standard   bool
}

// TestImportBoundaries keeps the layering honest: parsing and domain
// packages stay below the pipeline, and nothing below the app layer
// reaches up into cli, app or cmd.
func TestImportBoundaries(t *testing.T) {
	cmd := exec.Command("go", "list", "-json", "./...")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Fatalf("go list: %v", err)
	}
	dec := json.NewDecoder(&out)

	upper := []string{
		"cagecleaner/internal/pipeline",
		"cagecleaner/internal/cli", "cagecleaner/internal/app",
		"cagecleaner/internal/appshell", "cagecleaner/cmd/",
	}
	appOnly := []string{
		"cagecleaner/internal/cli", "cagecleaner/internal/app",
		"cagecleaner/internal/appshell", "cagecleaner/cmd/",
	}
	bans := map[string][]string{
		"cagecleaner/internal/hits":      upper,
		"cagecleaner/internal/summary":   upper,
		"cagecleaner/internal/resolve":   upper,
		"cagecleaner/internal/derep":     upper,
		"cagecleaner/internal/reconcile": upper,
		"cagecleaner/internal/output":    upper,
		"cagecleaner/internal/cache":     upper,
		"cagecleaner/internal/config":    upper,
		"cagecleaner/internal/pipeline":  appOnly,
	}

	var violations []string
	for {
		var p pkg
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(p.ImportPath, "cagecleaner/") {
			continue
		}
		imp := p.ImportPath
		for prefix, forbidden := range bans {
			if !strings.HasPrefix(imp, prefix) {
				continue
			}
			for _, dep := range p.Imports {
				if !strings.HasPrefix(dep, "cagecleaner/") {
					continue
				}
				for _, ban := range forbidden {
					if strings.HasPrefix(dep, ban) {
						violations = append(violations, imp+" → "+dep)
					}
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("import boundary violations:\n  %s", strings.Join(violations, "\n  "))
	}
}
