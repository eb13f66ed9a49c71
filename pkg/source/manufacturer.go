package source

import "regexp"

// manufacturerMapping pairs a case-insensitive regex matched against a
// source's free-text vendor string with NetBox's canonical Manufacturer
// primary key. Order matters, first match wins: exact short aliases sit
// above the broad substring patterns for the same vendor.
var manufacturerMapping = []struct {
	pattern *regexp.Regexp
	name    string
}{
	{regexp.MustCompile(`(?i)^AMD$`), "AMD"},
	{regexp.MustCompile(`(?i).*Broadcom.*`), "Broadcom"},
	{regexp.MustCompile(`(?i).*Cisco.*`), "Cisco"},
	{regexp.MustCompile(`(?i).*Dell.*`), "Dell"},
	{regexp.MustCompile(`(?i)^FTS Corp$`), "Fujitsu"},
	{regexp.MustCompile(`(?i).*Fujitsu.*`), "Fujitsu"},
	{regexp.MustCompile(`(?i).*HiSilicon.*`), "HiSilicon"},
	{regexp.MustCompile(`(?i)^HP$`), "HPE"},
	{regexp.MustCompile(`(?i)^HPE$`), "HPE"},
	{regexp.MustCompile(`(?i).*Huawei.*`), "Huawei"},
	{regexp.MustCompile(`(?i).*Hynix.*`), "Hynix"},
	{regexp.MustCompile(`(?i).*Inspur.*`), "Inspur"},
	{regexp.MustCompile(`(?i).*Intel.*`), "Intel"},
	{regexp.MustCompile(`(?i)^LEN$`), "Lenovo"},
	{regexp.MustCompile(`(?i).*Lenovo.*`), "Lenovo"},
	{regexp.MustCompile(`(?i).*Micron.*`), "Micron"},
	{regexp.MustCompile(`(?i).*Nvidia.*`), "Nvidia"},
	{regexp.MustCompile(`(?i).*Samsung.*`), "Samsung"},
	{regexp.MustCompile(`(?i).*Supermicro.*`), "Supermicro"},
	{regexp.MustCompile(`(?i).*Toshiba.*`), "Toshiba"},
	{regexp.MustCompile(`(?i)^WD$`), "Western Digital"},
	{regexp.MustCompile(`(?i).*Western Digital.*`), "Western Digital"},
}

// NormalizeManufacturer maps a source's free-text vendor string to
// NetBox's canonical Manufacturer primary key via the regex table above.
// An empty input returns "". An unmatched, non-empty input is returned
// verbatim, not replaced with a placeholder — an unrecognized vendor
// still becomes a real, findable Manufacturer record.
func NormalizeManufacturer(raw string) string {
	if raw == "" {
		return ""
	}
	for _, m := range manufacturerMapping {
		if m.pattern.MatchString(raw) {
			return m.name
		}
	}
	return raw
}
