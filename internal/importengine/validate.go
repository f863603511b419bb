package importengine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Stefan/ppm-saas-sub001/internal/anonymizer"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

func anonymizeActualRow(a *anonymizer.Anonymizer, raw RawActual) RawActual {
	out := a.AnonymizeActual(anonymizer.ActualRecord{
		Vendor:            raw.Vendor,
		VendorDescription: raw.VendorDescription,
		ProjectNr:         raw.ProjectNr,
		ItemText:          raw.ItemText,
	})
	raw.Vendor = out.Vendor
	raw.VendorDescription = out.VendorDescription
	raw.ProjectNr = out.ProjectNr
	raw.ItemText = out.ItemText
	return raw
}

func anonymizeCommitmentRow(a *anonymizer.Anonymizer, raw RawCommitment) RawCommitment {
	out := a.AnonymizeCommitment(anonymizer.CommitmentRecord{
		Vendor:            raw.Vendor,
		VendorDescription: raw.VendorDescription,
		ProjectNr:         raw.ProjectNr,
	})
	raw.Vendor = out.Vendor
	raw.VendorDescription = out.VendorDescription
	raw.ProjectNr = out.ProjectNr
	return raw
}

// validateActual structurally validates one row, returning every field
// error found (a row may fail on several fields at once).
func validateActual(row int, raw RawActual) (domain.Actual, []domain.ImportError) {
	var errs []domain.ImportError

	if raw.FIDocNo == "" {
		errs = append(errs, fieldErr(row, "fi_doc_no", raw.FIDocNo, "fi_doc_no is required"))
	}
	if raw.ProjectNr == "" {
		errs = append(errs, fieldErr(row, "project_nr", raw.ProjectNr, "project_nr is required"))
	}
	if raw.PostingDate.IsZero() {
		errs = append(errs, fieldErr(row, "posting_date", "", "posting_date is required"))
	}

	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		errs = append(errs, fieldErr(row, "amount", raw.Amount, "amount must be a valid decimal"))
	}
	if raw.Currency == "" {
		errs = append(errs, fieldErr(row, "currency", raw.Currency, "currency is required"))
	}

	if len(errs) > 0 {
		return domain.Actual{}, errs
	}

	return domain.Actual{
		FIDocNo:      raw.FIDocNo,
		PostingDate:  raw.PostingDate,
		DocumentDate: raw.DocumentDate,
		Vendor:       raw.Vendor,
		ProjectNr:    raw.ProjectNr,
		WBSElement:   raw.WBSElement,
		Amount:       amount,
		Currency:     raw.Currency,
		DocumentType: raw.DocumentType,
		CostCenter:   raw.CostCenter,
	}, nil
}

// validateCommitment structurally validates one commitment row.
func validateCommitment(row int, raw RawCommitment) (domain.Commitment, []domain.ImportError) {
	var errs []domain.ImportError

	if raw.PONumber == "" {
		errs = append(errs, fieldErr(row, "po_number", raw.PONumber, "po_number is required"))
	}
	if raw.POLineNr <= 0 {
		errs = append(errs, fieldErr(row, "po_line_nr", fmt.Sprintf("%d", raw.POLineNr), "po_line_nr must be positive"))
	}
	if raw.ProjectNr == "" {
		errs = append(errs, fieldErr(row, "project_nr", raw.ProjectNr, "project_nr is required"))
	}
	if raw.PODate.IsZero() {
		errs = append(errs, fieldErr(row, "po_date", "", "po_date is required"))
	}

	netAmount, err := decimal.NewFromString(raw.PONetAmount)
	if err != nil {
		errs = append(errs, fieldErr(row, "po_net_amount", raw.PONetAmount, "po_net_amount must be a valid decimal"))
	}
	totalAmount, err2 := decimal.NewFromString(raw.TotalAmount)
	if err2 != nil {
		errs = append(errs, fieldErr(row, "total_amount", raw.TotalAmount, "total_amount must be a valid decimal"))
	}
	if raw.Currency == "" {
		errs = append(errs, fieldErr(row, "currency", raw.Currency, "currency is required"))
	}

	if len(errs) > 0 {
		return domain.Commitment{}, errs
	}

	return domain.Commitment{
		PONumber:    raw.PONumber,
		POLineNr:    raw.POLineNr,
		PODate:      raw.PODate,
		Vendor:      raw.Vendor,
		ProjectNr:   raw.ProjectNr,
		WBSElement:  raw.WBSElement,
		PONetAmount: netAmount,
		TotalAmount: totalAmount,
		Currency:    raw.Currency,
		POStatus:    raw.POStatus,
		CostCenter:  raw.CostCenter,
	}, nil
}

func fieldErr(row int, field, value, msg string) domain.ImportError {
	return domain.ImportError{Row: row, Field: field, Value: value, Error: msg}
}
