// Package qrsheet normalizes decoded QR code payloads into ordered records
// and renders them as a two-line CSV block ready for a spreadsheet row.
//
// Quick start:
//
//	n := qrsheet.NormalizeContent("https://shop.test/item?sku=A12&qty=3")
//	rec := qrsheet.ToRecord(n)
//	fmt.Println(qrsheet.ToCSVLine(rec))
//	// "sku","qty"
//	// "A12","3"
//
// Payloads are recognized in a fixed order: JSON text, http(s) URLs (their
// query parameters), a=1&b=2 query strings, a:1, b=2 pairs, and anything
// else as {value: <text>}. Every function here is pure and safe for
// concurrent use. No input makes them fail.
package qrsheet
