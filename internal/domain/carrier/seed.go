package carrier

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"transdoc/internal/domain/country"
)

// SeedFile is the YAML layout for bulk-loading carriers and their licenses.
//
//	carriers:
//	  - name: Transportes Sul
//	    country: BR
//	    registration_number: BR1234/56
//	    start_primary: 1
//	    licenses:
//	      - destination: AR
//	        code: BR6023/1800648
//	        expires: 31/12/2027
type SeedFile struct {
	Carriers []SeedCarrier `yaml:"carriers"`
}

type SeedCarrier struct {
	Name               string        `yaml:"name"`
	Country            string        `yaml:"country"`
	RegistrationNumber string        `yaml:"registration_number"`
	StartPrimary       int64         `yaml:"start_primary"`
	StartManifest      int64         `yaml:"start_manifest"`
	Licenses           []SeedLicense `yaml:"licenses"`
}

type SeedLicense struct {
	Destination string `yaml:"destination"`
	Code        string `yaml:"code"`
	Idoneidade  string `yaml:"idoneidade"`
	Expires     string `yaml:"expires"`
}

// SeedResult counts the records written by Apply.
type SeedResult struct {
	Carriers int `json:"carriers"`
	Licenses int `json:"licenses"`
}

// ParseSeed decodes a seed file.
func ParseSeed(data []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// Apply writes every carrier and license of f through w. Countries are
// checked against the registry before anything is written for a carrier.
// Both upserts are keyed, so applying the same file twice is harmless.
func (f *SeedFile) Apply(ctx context.Context, w Writer, countries *country.Registry) (SeedResult, error) {
	var res SeedResult
	for _, sc := range f.Carriers {
		c := &Carrier{
			Name:               sc.Name,
			Country:            country.Normalize(sc.Country),
			RegistrationNumber: sc.RegistrationNumber,
			StartPrimary:       sc.StartPrimary,
			StartManifest:      sc.StartManifest,
		}
		if err := countries.Validate(c.Country); err != nil {
			return res, err
		}
		licenses := make([]*DestinationLicense, 0, len(sc.Licenses))
		for _, sl := range sc.Licenses {
			expires, err := ParseExpiry(sl.Expires)
			if err != nil {
				return res, fmt.Errorf("carrier %s: %w", sc.RegistrationNumber, err)
			}
			l := &DestinationLicense{
				DestinationCountry: country.Normalize(sl.Destination),
				Code:               sl.Code,
				Idoneidade:         sl.Idoneidade,
				ExpiresAt:          expires,
			}
			if err := countries.Validate(l.DestinationCountry); err != nil {
				return res, err
			}
			licenses = append(licenses, l)
		}

		if err := w.SaveCarrier(ctx, c); err != nil {
			return res, err
		}
		res.Carriers++
		for _, l := range licenses {
			l.CarrierID = c.ID
			if err := w.SaveLicense(ctx, l); err != nil {
				return res, err
			}
			res.Licenses++
		}
	}
	return res, nil
}
