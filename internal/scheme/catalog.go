// Package scheme classifies export products by their EXIM incentive
// scheme code and resolves which compliance subforms apply.
package scheme

// Subform identifies one compliance tab/section of the product editor.
type Subform string

const (
	SubformMain           Subform = "MAIN"
	SubformGeneral        Subform = "GENERAL"
	SubformDEEC           Subform = "DEEC"
	SubformEPCG           Subform = "EPCG"
	SubformDrawback       Subform = "DRAWBACK"
	SubformCessExportDuty Subform = "CESS_EXPORT_DUTY"
	SubformAreDetails     Subform = "ARE_DETAILS"
	SubformReExport       Subform = "RE_EXPORT"
	SubformOtherDetails   Subform = "OTHER_DETAILS"
)

// Scheme codes as they appear on the product record. Matching is by
// exact value against this closed table.
const (
	CodeAdvanceLicence     = "03 - ADVANCE LICENCE"
	CodeDrawback           = "19 - DRAWBACK"
	CodeDrawbackROSCTL     = "19 - DRAWBACK AND ROSCTL"
	CodeEPCGDrawback       = "11 - EPCG AND DRAWBACK"
	CodeEPCGDrawbackAlt    = "12 - EPCG AND DRAWBACK"
	CodeEPCGAdvanceLicense = "50 - EPCG AND ADVANCE LICENSE"
	CodeEOUEPZSEZ          = "EOU/EPZ/SEZ"
	CodeNoIncentive        = "No Foreign Exchange Incentive"
)

// catalog maps a scheme code to the conditional subforms it switches on.
// The unconditional subforms are merged in by ResolveSubforms; ordering
// is fixed by subformOrder, never by map iteration.
var catalog = map[string][]Subform{
	CodeAdvanceLicence:     {SubformDEEC},
	CodeDrawback:           {SubformDrawback},
	CodeDrawbackROSCTL:     {SubformDrawback},
	CodeEPCGDrawback:       {SubformEPCG, SubformDrawback},
	CodeEPCGDrawbackAlt:    {SubformEPCG, SubformDrawback},
	CodeEPCGAdvanceLicense: {SubformDEEC, SubformEPCG},
	CodeEOUEPZSEZ:          nil,
	CodeNoIncentive:        nil,
}

// subformOrder fixes the left-to-right tab order of every subform that
// can appear. ResolveSubforms output is always a subsequence of this.
var subformOrder = []Subform{
	SubformMain,
	SubformGeneral,
	SubformDEEC,
	SubformEPCG,
	SubformDrawback,
	SubformCessExportDuty,
	SubformAreDetails,
	SubformReExport,
	SubformOtherDetails,
}

// alwaysOn holds the subforms present for every scheme code.
var alwaysOn = map[Subform]bool{
	SubformMain:           true,
	SubformGeneral:        true,
	SubformCessExportDuty: true,
	SubformAreDetails:     true,
	SubformReExport:       true,
	SubformOtherDetails:   true,
}

// ResolveSubforms returns the ordered subform list for a scheme code.
// Unknown or empty codes resolve to the default set rather than an
// error so an unrecognised code never blocks data entry.
func ResolveSubforms(code string) []Subform {
	conditional := map[Subform]bool{}
	for _, sf := range catalog[code] {
		conditional[sf] = true
	}
	out := make([]Subform, 0, len(subformOrder))
	for _, sf := range subformOrder {
		if alwaysOn[sf] || conditional[sf] {
			out = append(out, sf)
		}
	}
	return out
}

// Known reports whether the code is present in the classification table.
func Known(code string) bool {
	_, ok := catalog[code]
	return ok
}
