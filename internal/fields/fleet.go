package fields

// defaultExtractors assembles the nine-extractor fleet run by Harness.
func defaultExtractors() []Extractor {
	return []Extractor{
		nameExtractor(),
		designationExtractor(),
		roleExtractor(),
		domainExtractor(),
		educationExtractor(),
		emailExtractor(),
		mobileExtractor(),
		experienceExtractor(),
		skillsExtractor(),
	}
}
