package services

import (
	"bytes"
	"fmt"

	"fleetrent/internal/models"

	"github.com/jung-kurt/gofpdf"
)

const contractDateFormat = "02-Jan-2006"

type pdfRenderer struct{}

// NewPDFRenderer renders contracts as A4 PDF documents.
func NewPDFRenderer() DocumentRenderer {
	return &pdfRenderer{}
}

func (r *pdfRenderer) ContentType() string {
	return "application/pdf"
}

func (r *pdfRenderer) Render(s *models.ContractSnapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Rental contract "+s.ContractNumber), false)
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)
	pdf.SetXY(marginX, marginY)

	// Header
	if len(s.Logo) > 0 {
		opts := gofpdf.ImageOptions{ImageType: s.LogoType, ReadDpi: true}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(s.Logo))
		if pdf.Ok() {
			pdf.ImageOptions("logo", 150, marginY, 40, 0, false, opts, 0, "")
		} else {
			pdf.ClearError()
		}
	}

	pdf.SetTextColor(33, 37, 41)
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(s.CompanyName))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{s.CompanyAddress, s.CompanyPhone, s.CompanyEmail} {
		if line != "" {
			pdf.Cell(0, 5, tr(line))
			pdf.Ln(5)
		}
	}
	if s.CompanyTaxID != "" {
		pdf.Cell(0, 5, tr("Tax ID: "+s.CompanyTaxID))
		pdf.Ln(5)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "VEHICLE RENTAL CONTRACT", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract No. %s  |  Issued %s", s.ContractNumber, s.IssuedAt.Format(contractDateFormat)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// Parties
	section(pdf, "RENTER")
	row(pdf, tr, "Name", s.ClientName)
	row(pdf, tr, "ID number", s.ClientIDNumber)
	row(pdf, tr, "Driving license", s.ClientLicenseNumber)
	if s.LicenseExpiryDate != nil {
		row(pdf, tr, "License expires", s.LicenseExpiryDate.Format(contractDateFormat))
	}
	row(pdf, tr, "Phone", s.ClientPhone)
	row(pdf, tr, "Email", s.ClientEmail)
	row(pdf, tr, "Address", s.ClientAddress)
	pdf.Ln(4)

	section(pdf, "VEHICLE")
	row(pdf, tr, "Vehicle", fmt.Sprintf("%s %s (%d)", s.VehicleBrand, s.VehicleModel, s.VehicleYear))
	row(pdf, tr, "Registration", s.RegistrationNumber)
	row(pdf, tr, "Daily rate", fmt.Sprintf("%.2f", s.DailyRate))
	pdf.Ln(4)

	// Rental period and charges
	section(pdf, "RENTAL PERIOD")
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	headers := []string{"Item", "Days", "Amount"}
	colWidths := []float64{110, 25, 35}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	extTotal := 0.0
	extDays := 0
	for _, ext := range s.Extensions {
		extTotal += ext.Price
		extDays += ext.Days
	}
	base := RoundCurrency(s.TotalPrice - extTotal)
	period := fmt.Sprintf("%s to %s", s.StartDate.Format(contractDateFormat), s.EndDate.AddDate(0, 0, -extDays).Format(contractDateFormat))
	pdf.CellFormat(colWidths[0], 8, tr("Rental "+period), "1", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", s.Days-extDays), "1", 0, "C", false, 0, "")
	pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", base), "1", 0, "R", false, 0, "")
	pdf.Ln(8)
	for _, ext := range s.Extensions {
		pdf.CellFormat(colWidths[0], 8, "Extension added "+ext.CreatedAt.Format(contractDateFormat), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", ext.Days), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", ext.Price), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(colWidths[0]+colWidths[1], 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", s.TotalPrice), "", 0, "R", false, 0, "")
	pdf.Ln(10)

	if s.Notes != "" {
		section(pdf, "NOTES")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(s.Notes), "", "L", false)
		pdf.Ln(4)
	}

	if s.Terms != "" {
		section(pdf, "TERMS & CONDITIONS")
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(0, 4.5, tr(s.Terms), "", "L", false)
		pdf.Ln(6)
	}

	// Signatures
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 9)
	y := pdf.GetY()
	pdf.Line(marginX, y, marginX+70, y)
	pdf.Line(120, y, 190, y)
	pdf.Ln(2)
	pdf.CellFormat(100, 5, "Renter signature", "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 5, "For "+tr(s.CompanyName), "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, title)
	pdf.Ln(7)
}

func row(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(40, 5, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, tr(value), "", 1, "L", false, 0, "")
}
