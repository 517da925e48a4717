package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Loader imports catalog CSV files into a Store. CSV layouts:
//
//	CIE-10 / CIE-11:  code[,description]
//	CUPS:             code,valid_from,valid_to,service_type,min_age,max_age,tariff,purpose
//	correspondence:   cups_code,cie_code,cie_code,...
//
// Empty cells mean the attribute is not constrained. Loading replaces the
// whole catalog of that kind.
type Loader struct {
	store  *Store
	logger *zap.Logger
}

// NewLoader creates a catalog loader writing into the given store.
func NewLoader(store *Store, logger *zap.Logger) *Loader {
	return &Loader{store: store, logger: logger}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return rows, nil
}

// LoadCIE10File loads a legacy diagnosis code catalog from CSV.
func (l *Loader) LoadCIE10File(path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	codes := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		codes[strings.TrimSpace(row[0])] = struct{}{}
	}
	l.store.LoadCIE10(codes)
	l.logger.Info("CIE-10 catalog loaded", zap.String("path", path), zap.Int("codes", len(codes)))
	return len(codes), nil
}

// LoadCIE11File loads a current diagnosis code catalog from CSV.
func (l *Loader) LoadCIE11File(path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	codes := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		codes[strings.TrimSpace(row[0])] = struct{}{}
	}
	l.store.LoadCIE11(codes)
	l.logger.Info("CIE-11 catalog loaded", zap.String("path", path), zap.Int("codes", len(codes)))
	return len(codes), nil
}

func parseDateCell(cell string) (*time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", cell)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIntCell(cell string) (*int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// LoadCUPSFile loads the procedure catalog with vigency metadata from CSV.
// Rows with malformed cells are skipped and counted, not fatal.
func (l *Loader) LoadCUPSFile(path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	entries := make(map[string]CUPSEntry, len(rows))
	skipped := 0
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		entry := CUPSEntry{}
		var rowErr error
		if len(row) > 1 {
			entry.ValidFrom, rowErr = parseDateCell(row[1])
		}
		if rowErr == nil && len(row) > 2 {
			entry.ValidTo, rowErr = parseDateCell(row[2])
		}
		if len(row) > 3 {
			entry.ServiceType = strings.TrimSpace(row[3])
		}
		if rowErr == nil && len(row) > 4 {
			entry.MinAge, rowErr = parseIntCell(row[4])
		}
		if rowErr == nil && len(row) > 5 {
			entry.MaxAge, rowErr = parseIntCell(row[5])
		}
		if rowErr == nil && len(row) > 6 && strings.TrimSpace(row[6]) != "" {
			entry.Tariff, rowErr = strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		}
		if len(row) > 7 {
			entry.Purpose = strings.TrimSpace(row[7])
		}
		if rowErr != nil {
			skipped++
			continue
		}
		entries[strings.TrimSpace(row[0])] = entry
	}
	if skipped > 0 {
		l.logger.Warn("skipped malformed CUPS catalog rows", zap.String("path", path), zap.Int("skipped", skipped))
	}
	l.store.LoadCUPS(entries)
	l.logger.Info("CUPS catalog loaded", zap.String("path", path), zap.Int("codes", len(entries)))
	return len(entries), nil
}

// LoadCorrespondenceFile loads the CUPS -> CIE association map from CSV.
func (l *Loader) LoadCorrespondenceFile(path string) (int, error) {
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	mapping := make(map[string][]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		cups := strings.TrimSpace(row[0])
		for _, cie := range row[1:] {
			cie = strings.TrimSpace(cie)
			if cie != "" {
				mapping[cups] = append(mapping[cups], strings.ToUpper(cie))
			}
		}
	}
	l.store.LoadCorrespondence(mapping)
	l.logger.Info("CIE-CUPS correspondence loaded", zap.String("path", path), zap.Int("procedures", len(mapping)))
	return len(mapping), nil
}
