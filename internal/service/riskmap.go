package service

import (
	"errors"

	"github.com/heiraid/heiraid-api/internal/domain/riskmap"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
)

// PropertyMap is the payload of the property risk map.
type PropertyMap struct {
	Counties  []riskmap.County   `json:"counties"`
	RiskTypes []riskmap.RiskType `json:"riskTypes"`
	Filter    PropertyMapFilter  `json:"filter"`
	Parcels   []riskmap.Parcel   `json:"parcels"`
}

// PropertyMapFilter echoes the applied filter.
type PropertyMapFilter struct {
	County   string           `json:"county,omitempty"`
	RiskType riskmap.RiskType `json:"riskType,omitempty"`
}

// LookupPropertyMap filters the static parcel dataset by county and risk type.
func LookupPropertyMap(county, riskType string) (*PropertyMap, error) {
	f, err := riskmap.ParseFilter(county, riskType)
	switch {
	case errors.Is(err, riskmap.ErrUnknownCounty):
		return nil, apperrors.ValidationField("county", "Unknown county.")
	case errors.Is(err, riskmap.ErrUnknownRiskType):
		return nil, apperrors.ValidationField("riskType", "Unknown risk type.")
	case err != nil:
		return nil, err
	}
	return &PropertyMap{
		Counties:  riskmap.Counties(),
		RiskTypes: riskmap.RiskTypes(),
		Filter:    PropertyMapFilter{County: f.County, RiskType: f.RiskType},
		Parcels:   riskmap.Parcels(f),
	}, nil
}
