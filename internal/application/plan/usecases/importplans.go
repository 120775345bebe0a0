package usecases

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// planFile is the catalog seed format:
//
//	plans:
//	  - name: Month
//	    price: "10"
//	    currency: USDT
//	    role_id: "1234"
//	    duration_months: 1
type planFile struct {
	Plans []planEntry `yaml:"plans"`
}

type planEntry struct {
	Name           string `yaml:"name"`
	Price          string `yaml:"price"`
	Currency       string `yaml:"currency"`
	RoleID         string `yaml:"role_id"`
	DurationMonths int    `yaml:"duration_months"`
}

type ImportPlansResult struct {
	Created int
	Updated int
}

// ImportPlansUseCase upserts every plan of a YAML catalog file. It stops at
// the first invalid entry; entries before it stay saved.
type ImportPlansUseCase struct {
	setPlan *SetPlanUseCase
}

func NewImportPlansUseCase(setPlan *SetPlanUseCase) *ImportPlansUseCase {
	return &ImportPlansUseCase{setPlan: setPlan}
}

func (uc *ImportPlansUseCase) Execute(ctx context.Context, r io.Reader) (*ImportPlansResult, error) {
	var file planFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return &ImportPlansResult{}, nil
		}
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}

	result := &ImportPlansResult{}
	for i, e := range file.Plans {
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			return result, fmt.Errorf("plan %d (%s): invalid price %q", i+1, e.Name, e.Price)
		}
		res, err := uc.setPlan.Execute(ctx, SetPlanCommand{
			Name:           e.Name,
			Price:          price,
			Currency:       e.Currency,
			RoleID:         e.RoleID,
			DurationMonths: e.DurationMonths,
		})
		if err != nil {
			return result, fmt.Errorf("plan %d (%s): %w", i+1, e.Name, err)
		}
		if res.Created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}
