package hcert

// DGC is the subset of the EU Digital Green Certificate schema (v1.3) that
// dsc-keys reports. Field names follow the schema's short keys.
type DGC struct {
	Version      string        `cbor:"ver" json:"ver"`
	Name         Name          `cbor:"nam" json:"nam"`
	DateOfBirth  string        `cbor:"dob" json:"dob"`
	Vaccinations []Vaccination `cbor:"v,omitempty" json:"v,omitempty"`
	Tests        []Test        `cbor:"t,omitempty" json:"t,omitempty"`
	Recoveries   []Recovery    `cbor:"r,omitempty" json:"r,omitempty"`
}

// Name is the holder name, as printed and in ICAO 9303 transliteration.
type Name struct {
	FamilyName             string `cbor:"fn,omitempty" json:"fn,omitempty"`
	FamilyNameStandardised string `cbor:"fnt" json:"fnt"`
	GivenName              string `cbor:"gn,omitempty" json:"gn,omitempty"`
	GivenNameStandardised  string `cbor:"gnt,omitempty" json:"gnt,omitempty"`
}

// Vaccination is a vaccination entry ("v").
type Vaccination struct {
	Disease       string `cbor:"tg" json:"tg"`
	VaccineType   string `cbor:"vp" json:"vp"`
	Product       string `cbor:"mp" json:"mp"`
	Manufacturer  string `cbor:"ma" json:"ma"`
	DoseNumber    int    `cbor:"dn" json:"dn"`
	TotalDoses    int    `cbor:"sd" json:"sd"`
	Date          string `cbor:"dt" json:"dt"`
	Country       string `cbor:"co" json:"co"`
	Issuer        string `cbor:"is" json:"is"`
	CertificateID string `cbor:"ci" json:"ci"`
}

// Test is a test entry ("t").
type Test struct {
	Disease         string `cbor:"tg" json:"tg"`
	TestType        string `cbor:"tt" json:"tt"`
	Name            string `cbor:"nm,omitempty" json:"nm,omitempty"`
	Manufacturer    string `cbor:"ma,omitempty" json:"ma,omitempty"`
	SampleCollected string `cbor:"sc" json:"sc"`
	Result          string `cbor:"tr" json:"tr"`
	Centre          string `cbor:"tc,omitempty" json:"tc,omitempty"`
	Country         string `cbor:"co" json:"co"`
	Issuer          string `cbor:"is" json:"is"`
	CertificateID   string `cbor:"ci" json:"ci"`
}

// Recovery is a recovery entry ("r").
type Recovery struct {
	Disease           string `cbor:"tg" json:"tg"`
	FirstPositiveTest string `cbor:"fr" json:"fr"`
	Country           string `cbor:"co" json:"co"`
	Issuer            string `cbor:"is" json:"is"`
	ValidFrom         string `cbor:"df" json:"df"`
	ValidUntil        string `cbor:"du" json:"du"`
	CertificateID     string `cbor:"ci" json:"ci"`
}
