// Package csv loads planning input from CSV files.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rollwise/cutplan/pkg/domain/entities"
)

// Loader handles loading planning data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDemand loads order demand lines from a CSV file
func (l *Loader) LoadDemand(filename string) ([]entities.DemandItem, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open demand file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read demand CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("demand CSV must have header and at least one data row")
	}

	expectedHeader := []string{"order_id", "width", "quantity", "gsm", "bf", "shade", "min_length"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("demand CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var items []entities.DemandItem
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("demand CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		item, err := parseDemandLine(record)
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: %w", i+2, err)
		}

		items = append(items, item)
	}

	return items, nil
}

// LoadRemnants loads remnant inventory from a CSV file
func (l *Loader) LoadRemnants(filename string) ([]*entities.Remnant, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open remnants file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read remnants CSV: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("remnants CSV must have header and at least one data row")
	}

	expectedHeader := []string{"source_order_id", "width", "weight_kg", "gsm", "bf", "shade"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("remnants CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	var remnants []*entities.Remnant
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("remnants CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		remnant, err := parseRemnantLine(record)
		if err != nil {
			return nil, fmt.Errorf("remnants CSV row %d: %w", i+2, err)
		}

		remnants = append(remnants, remnant)
	}

	return remnants, nil
}

func parseDemandLine(record []string) (entities.DemandItem, error) {
	orderRef := strings.TrimSpace(record[0])
	if orderRef == "" {
		return entities.DemandItem{}, fmt.Errorf("order_id cannot be empty")
	}

	width, err := entities.ParseWidth(record[1])
	if err != nil {
		return entities.DemandItem{}, fmt.Errorf("invalid width: %s", record[1])
	}

	quantity, err := strconv.Atoi(record[2])
	if err != nil {
		return entities.DemandItem{}, fmt.Errorf("invalid quantity: %s", record[2])
	}

	spec, err := parseSpec(record[3], record[4], record[5])
	if err != nil {
		return entities.DemandItem{}, err
	}

	minLength := decimal.Zero
	if strings.TrimSpace(record[6]) != "" {
		minLength, err = decimal.NewFromString(record[6])
		if err != nil {
			return entities.DemandItem{}, fmt.Errorf("invalid min_length: %s", record[6])
		}
	}

	origin := entities.Origin{
		Kind: entities.OriginOrder,
		ID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(orderRef)),
		Ref:  orderRef,
	}
	item, err := entities.NewDemandItem(spec, width, quantity, origin, minLength)
	if err != nil {
		return entities.DemandItem{}, err
	}
	return *item, nil
}

func parseRemnantLine(record []string) (*entities.Remnant, error) {
	orderRef := strings.TrimSpace(record[0])

	width, err := entities.ParseWidth(record[1])
	if err != nil {
		return nil, fmt.Errorf("invalid width: %s", record[1])
	}

	weight, err := decimal.NewFromString(record[2])
	if err != nil {
		return nil, fmt.Errorf("invalid weight_kg: %s", record[2])
	}

	spec, err := parseSpec(record[3], record[4], record[5])
	if err != nil {
		return nil, err
	}

	sourceID := uuid.Nil
	if orderRef != "" {
		sourceID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(orderRef))
	}
	return entities.NewRemnant(spec, width, weight, sourceID)
}

func parseSpec(gsmField, bfField, shadeField string) (entities.PaperSpec, error) {
	gsm, err := strconv.Atoi(gsmField)
	if err != nil {
		return entities.PaperSpec{}, fmt.Errorf("invalid gsm: %s", gsmField)
	}
	bf, err := decimal.NewFromString(bfField)
	if err != nil {
		return entities.PaperSpec{}, fmt.Errorf("invalid bf: %s", bfField)
	}
	return entities.NewPaperSpec(gsm, bf, strings.TrimSpace(shadeField))
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}
