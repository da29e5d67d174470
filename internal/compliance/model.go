package compliance

import "time"

// Product is one export line item on a shipment job. Identity is the
// position inside Shipment.Products; SerialNumber is the displayed
// serial and is not reassigned when an earlier product is deleted,
// because issued customs paperwork references it.
type Product struct {
	SerialNumber int     `json:"serialNumber" db:"serial_number"`
	EximCode     string  `json:"eximCode,omitempty" db:"exim_code"`
	Description  string  `json:"description,omitempty" db:"description"`
	HSCode       string  `json:"hsCode,omitempty" db:"hs_code"`
	Quantity     float64 `json:"quantity" db:"quantity"`
	UOM          string  `json:"uom,omitempty" db:"uom"`
	UnitPrice    float64 `json:"unitPrice" db:"unit_price"`
	Currency     string  `json:"currency,omitempty" db:"currency"`
	NetWeight    float64 `json:"netWeight" db:"net_weight"`
	GrossWeight  float64 `json:"grossWeight" db:"gross_weight"`

	// Scheme-specific sub-records, populated only when the operator
	// opens the matching subform.
	DeecDetails     *DeecDetails     `json:"deecDetails,omitempty" db:"-"`
	EpcgDetails     *EpcgDetails     `json:"epcgDetails,omitempty" db:"-"`
	DrawbackDetails *DrawbackDetails `json:"drawbackDetails,omitempty" db:"-"`
	CessExpDuty     *CessExpDuty     `json:"cessExpDuty,omitempty" db:"-"`
	AreDetails      []AreDetailRow   `json:"areDetails,omitempty" db:"-"`
	ReExport        *ReExport        `json:"reExport,omitempty" db:"-"`
	OtherDetails    *OtherDetails    `json:"otherDetails,omitempty" db:"-"`
}

// DeecDetails carries the Duty Exemption Entitlement Certificate data
// for products exported under an advance licence.
type DeecDetails struct {
	LicenceNumber    string     `json:"licenceNumber,omitempty"`
	LicenceDate      *time.Time `json:"licenceDate,omitempty"`
	RegistrationNo   string     `json:"registrationNo,omitempty"`
	ExportObligation float64    `json:"exportObligation"`
	Items            []DeecItem `json:"items,omitempty"`
}

// DeecItem is one imported-input line under a DEEC licence.
type DeecItem struct {
	SerialNumber  int     `json:"serialNumber"`
	Description   string  `json:"description,omitempty"`
	TechnicalChar string  `json:"technicalChar,omitempty"`
	Quantity      float64 `json:"quantity"`
	UOM           string  `json:"uom,omitempty"`
	CIFValue      float64 `json:"cifValue"`
}

func (d DeecItem) Ordinal() int { return d.SerialNumber }
func (d DeecItem) WithOrdinal(n int) any {
	d.SerialNumber = n
	return d
}

// EpcgDetails records the capital-goods licence under which the export
// obligation is being discharged.
type EpcgDetails struct {
	LicenceNumber  string     `json:"licenceNumber,omitempty"`
	LicenceDate    *time.Time `json:"licenceDate,omitempty"`
	EpcgPercent    float64    `json:"epcgPercent"`
	ObligationFrom *time.Time `json:"obligationFrom,omitempty"`
	ObligationTo   *time.Time `json:"obligationTo,omitempty"`
	Remarks        string     `json:"remarks,omitempty"`
}

// DrawbackDetails identifies the duty drawback claim for the product.
type DrawbackDetails struct {
	TariffItem    string  `json:"tariffItem,omitempty"`
	DrawbackRate  float64 `json:"drawbackRate"`
	CapPerUnit    float64 `json:"capPerUnit"`
	ClaimAmount   float64 `json:"claimAmount"`
	BankAccountNo string  `json:"bankAccountNo,omitempty"`
	ROSCTLAmount  float64 `json:"rosctlAmount"`
}

// CessExpDuty carries cess and export duty figures plus the nested
// CENVAT declaration.
type CessExpDuty struct {
	CessRate       float64 `json:"cessRate"`
	CessAmount     float64 `json:"cessAmount"`
	ExportDutyRate float64 `json:"exportDutyRate"`
	ExportDutyAmt  float64 `json:"exportDutyAmt"`
	Cenvat         *Cenvat `json:"cenvat,omitempty"`
}

// Cenvat is the CENVAT credit declaration nested under CessExpDuty.
type Cenvat struct {
	Availed       bool       `json:"availed"`
	DeclarationNo string     `json:"declarationNo,omitempty"`
	Date          *time.Time `json:"date,omitempty"`
	Amount        float64    `json:"amount"`
}

// AreDetailRow is one ARE-1/ARE-2 excise form row for the product.
type AreDetailRow struct {
	SerialNumber        int        `json:"serialNumber"`
	FormNumber          string     `json:"formNumber,omitempty"`
	FormDate            *time.Time `json:"formDate,omitempty"`
	CommissionerateCode string     `json:"commissionerateCode,omitempty"`
	RangeCode           string     `json:"rangeCode,omitempty"`
	DivisionCode        string     `json:"divisionCode,omitempty"`
	DutyAmount          float64    `json:"dutyAmount"`
	BondType            string     `json:"bondType,omitempty"`
}

func (r AreDetailRow) Ordinal() int { return r.SerialNumber }
func (r AreDetailRow) WithOrdinal(n int) any {
	r.SerialNumber = n
	return r
}

// ReExport is the flat re-export declaration. All fields are optional;
// the form is rendered for every scheme but rarely completed.
type ReExport struct {
	OriginalImportBENo    string     `json:"originalImportBeNo,omitempty"`
	OriginalImportBEDate  *time.Time `json:"originalImportBeDate,omitempty"`
	ImportPort            string     `json:"importPort,omitempty"`
	ImportInvoiceNo       string     `json:"importInvoiceNo,omitempty"`
	ImportInvoiceDate     *time.Time `json:"importInvoiceDate,omitempty"`
	ImportedQty           float64    `json:"importedQty"`
	ReExportQty           float64    `json:"reExportQty"`
	ImportDutyPaid        float64    `json:"importDutyPaid"`
	DrawbackClaimed       float64    `json:"drawbackClaimed"`
	ModvatAvailed         bool       `json:"modvatAvailed"`
	BoardCircularNo       string     `json:"boardCircularNo,omitempty"`
	NotificationNo        string     `json:"notificationNo,omitempty"`
	IdentityEstablishedBy string     `json:"identityEstablishedBy,omitempty"`
	Remarks               string     `json:"remarks,omitempty"`
}

// OtherDetails groups the miscellaneous declaration fields shared by
// every scheme.
type OtherDetails struct {
	SourceState    string `json:"sourceState,omitempty"`
	TransitCountry string `json:"transitCountry,omitempty"`
	ThirdPartyName string `json:"thirdPartyName,omitempty"`
	Jobbing        bool   `json:"jobbing"`
	Remarks        string `json:"remarks,omitempty"`
}
