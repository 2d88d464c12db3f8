// internal/output/output.go
package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"cagecleaner/internal/reconcile"
)

// Output file names, matching the original tool's conventions.
const (
	CleanedName  = "cleaned_binary.csv"
	ClustersName = "clusters.txt"
)

// Write emits the cleaned hit table and the cluster list into dir, one line
// per entry, in the order entries arrive. Both files are staged as temp
// files and renamed into place only after both wrote cleanly, so a fatal
// error never leaves a partial output behind.
func Write(dir string, header []string, entries []reconcile.Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	cleanedTmp, err := writeCleaned(dir, header, entries)
	if err != nil {
		return err
	}
	clustersTmp, err := writeClusters(dir, entries)
	if err != nil {
		_ = os.Remove(cleanedTmp)
		return err
	}

	if err := os.Rename(cleanedTmp, filepath.Join(dir, CleanedName)); err != nil {
		_ = os.Remove(cleanedTmp)
		_ = os.Remove(clustersTmp)
		return fmt.Errorf("finalize %s: %w", CleanedName, err)
	}
	if err := os.Rename(clustersTmp, filepath.Join(dir, ClustersName)); err != nil {
		_ = os.Remove(clustersTmp)
		return fmt.Errorf("finalize %s: %w", ClustersName, err)
	}
	return nil
}

func writeCleaned(dir string, header []string, entries []reconcile.Entry) (string, error) {
	fh, err := os.CreateTemp(dir, CleanedName+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", CleanedName, err)
	}
	w := csv.NewWriter(fh)
	if err := w.Write(header); err != nil {
		return cleanup(fh, CleanedName, err)
	}
	for _, e := range entries {
		if err := w.Write(e.Hit.Fields); err != nil {
			return cleanup(fh, CleanedName, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return cleanup(fh, CleanedName, err)
	}
	if err := fh.Close(); err != nil {
		_ = os.Remove(fh.Name())
		return "", fmt.Errorf("stage %s: %w", CleanedName, err)
	}
	return fh.Name(), nil
}

func writeClusters(dir string, entries []reconcile.Entry) (string, error) {
	fh, err := os.CreateTemp(dir, ClustersName+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", ClustersName, err)
	}
	w := bufio.NewWriter(fh)
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.Label); err != nil {
			return cleanup(fh, ClustersName, err)
		}
	}
	if err := w.Flush(); err != nil {
		return cleanup(fh, ClustersName, err)
	}
	if err := fh.Close(); err != nil {
		_ = os.Remove(fh.Name())
		return "", fmt.Errorf("stage %s: %w", ClustersName, err)
	}
	return fh.Name(), nil
}

func cleanup(fh *os.File, name string, err error) (string, error) {
	_ = fh.Close()
	_ = os.Remove(fh.Name())
	return "", fmt.Errorf("stage %s: %w", name, err)
}
