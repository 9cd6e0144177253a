package services

import (
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Label describes a shipping label for an external renderer: a ZPL program that prints the
// container id as a GS1-128 barcode, and the same id as readable text.
type Label struct {
	ContainerID    string
	PrinterPayload string
	HumanReadable  string
}

type LabelBuilder struct{}

func NewLabelBuilder() LabelBuilder {
	return LabelBuilder{}
}

// BuildLabel rejects ids that are not 18 digits with a valid check digit.
func (LabelBuilder) BuildLabel(containerID string) (Label, error) {
	if len(containerID) != ContainerIDLength || !kernel.HasValidCheckDigit(containerID) {
		return Label{}, errs.NewValidationError("containerId", containerID+" is not a valid 18-digit container id")
	}

	readable := "(00) " + containerID
	payload := strings.Join([]string{
		"^XA",
		"^CI28",
		"^FO40,30^A0N,30,30^FDSSCC^FS",
		// Code 128 in UCC/EAN mode, application identifier 00.
		"^FO40,80^BY3^BCN,180,N,N,N,D^FD(00)" + containerID + "^FS",
		"^FO40,290^A0N,40,40^FD" + readable + "^FS",
		"^XZ",
	}, "\n")

	return Label{
		ContainerID:    containerID,
		PrinterPayload: payload,
		HumanReadable:  readable,
	}, nil
}
