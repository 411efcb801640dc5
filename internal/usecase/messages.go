package usecase

import (
	"fmt"

	"service-discounts/internal/domain"
	apperrors "service-discounts/internal/errors"
)

// Status keys the message sent back to the invoking system at the end of a run.
type Status string

const (
	StatusMainError            Status = "main_error"
	StatusInputError           Status = "input_error"
	StatusNoProducts           Status = "impossible_get_products"
	StatusNoProductProps       Status = "impossible_get_product_props"
	StatusNoCompany            Status = "impossible_get_company"
	StatusNoPartnerRecords     Status = "impossible_get_partner_records"
	StatusNoInvoiceRecords     Status = "impossible_get_invoice_records"
	StatusNoAccumulativeRecord Status = "impossible_get_accumulative_records"
	StatusNoProductRecords     Status = "impossible_get_product_records"
	StatusGuardBlocked         Status = "guard_blocked"
	StatusPushFailed           Status = "impossible_push_results"
	StatusCalculationOK        Status = "calculation_ok"
	StatusVolumeRecorded       Status = "volume_recorded"
	StatusVolumeNotFound       Status = "volume_not_found"
	StatusVolumeReadOK         Status = "volume_read_ok"
	StatusVolumesImported      Status = "volumes_imported"
)

var messages = map[Status]string{
	StatusMainError:            "Error:",
	StatusInputError:           "Error: invalid input parameters",
	StatusNoProducts:           "Error: cannot get the order products",
	StatusNoProductProps:       "Error: cannot get the properties of product %d",
	StatusNoCompany:            "Error: cannot get the company",
	StatusNoPartnerRecords:     "Error: cannot get the records of program \"Partner discount\"",
	StatusNoInvoiceRecords:     "Error: cannot get the records of program \"Invoice threshold discount\"",
	StatusNoAccumulativeRecord: "Error: cannot get the records of program \"Accumulative discount\"",
	StatusNoProductRecords:     "Error: cannot get the records of program \"Product discount\"",
	StatusGuardBlocked:         "Error: the result was blocked by guard %s",
	StatusPushFailed:           "Error: cannot push the products to the order",
	StatusCalculationOK:        "Success: discounts calculated",
	StatusVolumeRecorded:       "Success: volumes recorded",
	StatusVolumeNotFound:       "Error: no accumulated volume stored",
	StatusVolumeReadOK:         "Success: accumulated volume read",
	StatusVolumesImported:      "Success: %d volumes imported",
}

// Message renders the text of status.
func Message(status Status, args ...any) string {
	text, ok := messages[status]
	if !ok {
		text = messages[StatusMainError]
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}

// failureMessage renders the message of a failed run. Errors without a dedicated
// status are reported as the main error followed by their text.
func failureMessage(status Status, err error, args ...any) string {
	if status == StatusMainError || status == "" {
		return fmt.Sprintf("%s %v", messages[StatusMainError], err)
	}
	return Message(status, args...)
}

var programStatus = map[domain.ProgramType]Status{
	domain.ProgramPartner:      StatusNoPartnerRecords,
	domain.ProgramInvoice:      StatusNoInvoiceRecords,
	domain.ProgramAccumulative: StatusNoAccumulativeRecord,
	domain.ProgramProduct:      StatusNoProductRecords,
}

// engineStatus picks the status of an engine failure. Program record lookups carry the
// program in their context.
func engineStatus(err error) Status {
	if apperrors.TypeOf(err) != apperrors.TypeLookupFailure {
		return StatusMainError
	}
	program, _ := apperrors.ContextValue(err, "program")
	name, _ := program.(string)
	if status, ok := programStatus[domain.ProgramType(name)]; ok {
		return status
	}
	return StatusMainError
}
