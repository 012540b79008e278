// Package reportparse turns semi-structured markdown reports into a typed
// document tree of titled, nested sections, tables and numbered references,
// and round-trips that tree through JSON.
//
// Most callers need only ParseDocument and LoadFromFile:
//
//	doc, err := reportparse.ParseDocument("analysis.md", "")
//	if err != nil {
//		return err
//	}
//	if err := doc.SaveToFile("analysis.json"); err != nil {
//		return err
//	}
//
// Every failure is a *ParserError; use errors.Is with ErrFileNotFound,
// ErrDecode or ErrMalformedDocument to tell the causes apart.
package reportparse
