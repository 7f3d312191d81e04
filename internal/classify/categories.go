// Package classify implements the two-stage mastercategory/category
// classifier. The category label sets below are closed: a classification
// result that does not case-insensitively match one of these strings is
// treated the same as a parse failure (the field stays null).
package classify

// ITCategories is the closed label set for IT resumes, recovered verbatim
// from the category extractor this system replaces.
var ITCategories = []string{
	"Full Stack Development (Java)",
	"Full Stack Development (Python)",
	"Full Stack Development (.NET)",
	"Programming & Scripting",
	"Databases & Data Technologies",
	"Cloud Platforms (Azure)",
	"Cloud Platforms (AWS)",
	"DevOps & Platform Engineering",
	"Artificial Intelligence & Machine Learning",
	"Generative AI & Large Language Models",
	"Data Science",
	"Data Analysis & Business Intelligence",
	"Networking & Security",
	"Software Tools & Platforms",
	"Methodologies & Practices (Agile, DevOps, SDLC)",
	"Web & Mobile Development",
	"Microsoft Dynamics & Power Platform",
	"SAP Ecosystem",
	"Salesforce Ecosystem",
	"ERP Systems",
	"IT Business Analysis",
	"IT Project / Program Management",
}

// NonITCategories is the closed label set for NON_IT resumes.
var NonITCategories = []string{
	"Business & Management",
	"Finance & Accounting",
	"Banking Financial Services & Insurance (BFSI)",
	"Sales & Marketing",
	"Human Resources (HR)",
	"Operations & Supply Chain Management",
	"Procurement & Vendor Management",
	"Manufacturing & Production",
	"Quality Compliance & Audit",
	"Project Management (Non-IT)",
	"Strategy & Consulting",
	"Entrepreneurship & Startups",
	"Education Training & Learning",
	"Healthcare & Life Sciences",
	"Pharmaceuticals & Clinical Research",
	"Retail & E-Commerce (Non-Tech)",
	"Logistics & Transportation",
	"Real Estate & Facilities Management",
	"Construction & Infrastructure",
	"Energy Utilities & Sustainability",
	"Agriculture & Agri-Business",
	"Hospitality Travel & Tourism",
	"Media Advertising & Communications",
	"Legal Risk & Corporate Governance",
	"Public Sector & Government Services",
	"NGOs Social Impact & CSR",
	"Customer Service & Customer Experience",
	"Administration & Office Management",
	"Product Management (Business / Functional)",
	"Data Analytics & Decision Sciences (Non-Technical)",
}

// CategoriesFor returns the closed label list for a mastercategory.
func CategoriesFor(mastercategory string) []string {
	if mastercategory == "IT" {
		return ITCategories
	}
	return NonITCategories
}
