// Package anonymizer produces stable pseudonyms for sensitive identifiers
// within a single import session. It carries no persistence and no process
// state: a fresh Anonymizer is constructed per import and discarded after.
package anonymizer

import (
	"fmt"
)

var genericDescriptions = map[string][]string{
	"project": {
		"Infrastructure Development Project",
		"Software Implementation Initiative",
		"Business Process Optimization",
		"Technology Upgrade Program",
		"Quality Improvement Project",
		"Facility Modernization",
		"Digital Transformation Initiative",
		"Operational Excellence Program",
		"Strategic Planning Project",
		"Innovation Development Program",
	},
	"wbs": {
		"Planning and Design Phase",
		"Implementation Phase",
		"Testing and Validation",
		"Deployment and Rollout",
		"Training and Documentation",
		"Maintenance and Support",
		"Quality Assurance",
		"Project Management",
		"Technical Infrastructure",
		"User Acceptance Testing",
	},
	"cost_center": {
		"Operations Department",
		"IT Services",
		"Finance and Administration",
		"Human Resources",
		"Facilities Management",
		"Quality Assurance",
		"Research and Development",
		"Customer Service",
		"Supply Chain Management",
		"Business Development",
	},
	"po_line": {
		"Professional Services",
		"Software Licenses",
		"Hardware Equipment",
		"Consulting Services",
		"Maintenance Contract",
		"Training Services",
		"Technical Support",
		"Cloud Services",
		"Network Equipment",
		"Office Supplies",
	},
	"po_title": {
		"Annual Service Agreement",
		"Software License Renewal",
		"Equipment Procurement",
		"Consulting Engagement",
		"Maintenance Services",
		"Professional Services Contract",
		"Technology Infrastructure",
		"Support Services Agreement",
		"Implementation Services",
		"Training and Development",
	},
}

// Anonymizer maintains the per-session mapping tables. Zero value is not
// usable; construct with New.
type Anonymizer struct {
	vendorMap     map[string]string
	projectMap    map[string]string
	personnelMap  map[string]string
	vendorSeq     int
	projectSeq    int
	personnelSeq  int
	descCounters  map[string]int
}

// New returns an Anonymizer with empty mapping tables.
func New() *Anonymizer {
	return &Anonymizer{
		vendorMap:    make(map[string]string),
		projectMap:   make(map[string]string),
		personnelMap: make(map[string]string),
		descCounters: make(map[string]int, len(genericDescriptions)),
	}
}

// AnonymizeVendor returns "Vendor A", "Vendor B", ... stable within the
// session. Empty input passes through unchanged.
func (a *Anonymizer) AnonymizeVendor(vendor string) string {
	if vendor == "" {
		return vendor
	}
	if existing, ok := a.vendorMap[vendor]; ok {
		return existing
	}
	a.vendorSeq++
	pseudonym := vendorLabel(a.vendorSeq)
	a.vendorMap[vendor] = pseudonym
	return pseudonym
}

// vendorLabel converts a 1-based sequence number into "Vendor A".."Vendor Z",
// then "Vendor AA".."Vendor AZ", etc., matching the letter-cycling the
// counter implies beyond 26 vendors.
func vendorLabel(seq int) string {
	return fmt.Sprintf("Vendor %s", letterSuffix(seq))
}

func letterSuffix(seq int) string {
	if seq <= 0 {
		return ""
	}
	var letters []byte
	for seq > 0 {
		seq--
		letters = append([]byte{byte('A' + seq%26)}, letters...)
		seq /= 26
	}
	return string(letters)
}

// AnonymizeProjectNr returns "P0001", "P0002", ... stable within the session.
func (a *Anonymizer) AnonymizeProjectNr(projectNr string) string {
	if projectNr == "" {
		return projectNr
	}
	if existing, ok := a.projectMap[projectNr]; ok {
		return existing
	}
	a.projectSeq++
	pseudonym := fmt.Sprintf("P%04d", a.projectSeq)
	a.projectMap[projectNr] = pseudonym
	return pseudonym
}

// AnonymizePersonnel returns "EMP001", "EMP002", ... stable within the session.
func (a *Anonymizer) AnonymizePersonnel(personnelNr string) string {
	if personnelNr == "" {
		return personnelNr
	}
	if existing, ok := a.personnelMap[personnelNr]; ok {
		return existing
	}
	a.personnelSeq++
	pseudonym := fmt.Sprintf("EMP%03d", a.personnelSeq)
	a.personnelMap[personnelNr] = pseudonym
	return pseudonym
}

// AnonymizeText flattens any descriptive text to a fixed placeholder.
func (a *Anonymizer) AnonymizeText(text string) string {
	if text == "" {
		return text
	}
	return "Item Description"
}

// GenericDescription cycles through a fixed per-category table with a
// per-session counter. Unknown categories return a generic fallback rather
// than erroring, mirroring the source's lenient behavior.
func (a *Anonymizer) GenericDescription(category string) string {
	table, ok := genericDescriptions[category]
	if !ok {
		return "Generic Description"
	}
	counter := a.descCounters[category]
	description := table[counter%len(table)]
	a.descCounters[category] = counter + 1
	return description
}

// ActualRecord is the named subset of an Actual's fields the anonymizer
// touches; other fields (amount, dates, currency, document type, wbs
// element, fi_doc_no) pass through unchanged and are not modeled here.
type ActualRecord struct {
	Vendor            string
	VendorDescription string
	ProjectNr         string
	ItemText          string
}

// AnonymizeActual applies the vendor/project/text pseudonymization rules
// used for actuals rows. Empty fields are left untouched.
func (a *Anonymizer) AnonymizeActual(rec ActualRecord) ActualRecord {
	out := rec
	if rec.Vendor != "" {
		out.Vendor = a.AnonymizeVendor(rec.Vendor)
	}
	if rec.VendorDescription != "" {
		out.VendorDescription = "Vendor Description"
	}
	if rec.ProjectNr != "" {
		out.ProjectNr = a.AnonymizeProjectNr(rec.ProjectNr)
	}
	if rec.ItemText != "" {
		out.ItemText = a.AnonymizeText(rec.ItemText)
	}
	return out
}

// CommitmentRecord is the named subset of a Commitment's fields the
// anonymizer touches.
type CommitmentRecord struct {
	Vendor                 string
	VendorDescription      string
	ProjectNr              string
	ProjectDescription     string
	WBSDescription         string
	CostCenterDescription  string
	POLineText             string
	POTitle                string
	Requester              string
	POCreatedBy            string
}

// AnonymizeCommitment applies the pseudonymization rules used for
// commitments rows.
func (a *Anonymizer) AnonymizeCommitment(rec CommitmentRecord) CommitmentRecord {
	out := rec
	if rec.Vendor != "" {
		out.Vendor = a.AnonymizeVendor(rec.Vendor)
	}
	if rec.VendorDescription != "" {
		out.VendorDescription = "Vendor Description"
	}
	if rec.ProjectNr != "" {
		out.ProjectNr = a.AnonymizeProjectNr(rec.ProjectNr)
	}
	if rec.ProjectDescription != "" {
		out.ProjectDescription = a.GenericDescription("project")
	}
	if rec.WBSDescription != "" {
		out.WBSDescription = a.GenericDescription("wbs")
	}
	if rec.CostCenterDescription != "" {
		out.CostCenterDescription = a.GenericDescription("cost_center")
	}
	if rec.POLineText != "" {
		out.POLineText = a.GenericDescription("po_line")
	}
	if rec.POTitle != "" {
		out.POTitle = a.GenericDescription("po_title")
	}
	if rec.Requester != "" {
		out.Requester = a.AnonymizePersonnel(rec.Requester)
	}
	if rec.POCreatedBy != "" {
		out.POCreatedBy = a.AnonymizePersonnel(rec.POCreatedBy)
	}
	return out
}
