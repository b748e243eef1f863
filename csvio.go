package main

import (
	"strings"

	"companyfix/correction"
	"companyfix/tabular"
)

// Spalten der Web-Exporte
const (
	colURL        = "url"
	colURLError   = "url_error"
	colIdentifier = "identifier"
	colCompany    = "company"
	colContactURL = "contact_url"
	colAddress    = "address"
	colPhone      = "phone"
	colEmail      = "email"
	colSource     = "source"
	colError      = "error"
)

var contactHeader = []string{colIdentifier, colCompany, colURL, colContactURL, colAddress, colPhone, colEmail, colSource, colError}

// companiesFromTable liest Firmen aus einer korrigierten Tabelle. Der
// korrigierte Name hat Vorrang vor dem Rohnamen.
func companiesFromTable(t *tabular.Table, nameCol, idCol string) ([]companyRow, error) {
	if err := t.RequireColumns(idCol); err != nil {
		return nil, err
	}
	if !t.HasColumn(correction.ColFinal) {
		if err := t.RequireColumns(nameCol); err != nil {
			return nil, err
		}
	}

	rows := make([]companyRow, len(t.Rows))
	for i, row := range t.Rows {
		name := strings.TrimSpace(row[correction.ColFinal])
		if name == "" {
			name = strings.TrimSpace(row[nameCol])
		}
		rows[i] = companyRow{
			Identifier: row[idCol],
			Company:    name,
			URL:        strings.TrimSpace(row[colURL]),
		}
	}
	return rows, nil
}

// annotateURLs schreibt gefundene URLs und Fehler in die Tabelle zurück.
func annotateURLs(t *tabular.Table, urls, errs []string) {
	t.AddColumn(colURL)
	t.AddColumn(colURLError)
	for i, row := range t.Rows {
		row[colURL] = urls[i]
		row[colURLError] = errs[i]
	}
}

func contactsTable(results []contactResult) *tabular.Table {
	t := tabular.New(contactHeader...)
	for _, r := range results {
		t.Append(map[string]string{
			colIdentifier: r.Identifier,
			colCompany:    r.Company,
			colURL:        r.URL,
			colContactURL: r.ContactURL,
			colAddress:    r.Address,
			colPhone:      r.Phone,
			colEmail:      r.Email,
			colSource:     r.Source,
			colError:      r.Err,
		})
	}
	return t
}
