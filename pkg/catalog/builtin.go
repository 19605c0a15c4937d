// pkg/catalog/builtin.go
package catalog

var builtinUniversities = []University{
	{"Adelaide University", "Adelaide University.png"},
	{"AIBI", "AIBI.png"},
	{"Box Hill Institute", "Box Hill Institute.png"},
	{"Catholic Schools NSW", "Catholic Schools NSW.jpg"},
	{"Charles Darwin University", "Charles Darwin University.png"},
	{"Charles Sturt University", "Charles Sturt University.png"},
	{"CQ University", "CQ University.png"},
	{"Curtin University", "Curtin University.jpg"},
	{"Deakin University", "Deakin University.png"},
	{"Edith Cowan University", "Edith Cowan University.png"},
	{"Federation University", "Federation University.png"},
	{"Flinders University", "Flinders University.png"},
	{"GLI", "GLI.webp"},
	{"Griffith University", "Griffith University.png"},
	{"ICMS", "ICMS.png"},
	{"James Cook University", "James Cook University.png"},
	{"Kaplan Business School", "Kaplan business School.jpg"},
	{"KOI", "KOI.png"},
	{"La Trobe University", "La Trobe University.png"},
	{"Macquarie University", "Macquarie University.png"},
	{"Melbourne Institute of Technology", "Melbourne Institute of Technology.jpg"},
	{"Murdoch University", "Murdoch University.jpg"},
	{"RMIT", "RMIT.png"},
	{"SIHE", "SIHE.png"},
	{"SISH", "SISH.png"},
	{"Sydney Met", "Sydney Met.png"},
	{"TAFE NSW", "TAFE NSW.png"},
	{"Torrens University", "Torrens University.jpg"},
	{"UHE", "UHE.png"},
	{"University of Canberra", "University of Canberra.png"},
	{"University of New England", "University of New England.png"},
	{"University of Newcastle", "University of Newcastle.png"},
	{"University of Queensland", "University of Queensland.jpg"},
	{"University of Sunshine Coast", "University of Sunshine Coast.png"},
	{"University of Tasmania", "University of Tasmania.png"},
	{"University of Western Australia", "University of Western Australia.png"},
	{"University of Western Sydney", "University of Western Sydney.png"},
	{"University of Wollongong", "University of Wollongong.png"},
	{"Victoria University", "Victoria University.png"},
	{"Institution", "Undefined.png"},
	{"Queensland University of Technology", "Queensland University of Technology.jpg"},
	{"University of Southern Queensland", "University of Southern Queensland.png"},
}

// Duplicates are dropped by New.
var builtinCourses = []string{
	"Bachelor of IT",
	"Bachelor of Commerce",
	"Bachelor Program",
	"Cybersecurity",
	"Bachelor of Science",
	"Bachelor of Business",
	"Bachelor of Engineering",
	"Bachelor of Science",
	"Bachelor of Nursing",
	"Bachelor of Arts",
	"Bachelor of Design",
	"Bachelor of Law",
	"Bachelor of Education",
	"Nursing",
	"Health Science",
	"Early Childhood Education",
	"Masters Program",
	"Master of Science",
	"Masters of Data Analytics",
	"Master of Data Science",
	"Master of Business",
	"Master of Business Administration",
	"Master of Engineering",
	"Master of Cyber Security",
	"Master of Architecture",
	"Master of Education",
	"Master of Psychology",
	"Master of Public Health",
	"Master of Accounting",
	"Master of Business Analytics",
	"Master of Marketing",
	"Graduate Diploma",
	"Diploma",
	"AEP/EAP",
	"Diploma of IT",
	"Diploma of Business",
	"Certificate IV",
	"PhD",
}

// Builtin returns the catalog shipped with the tracker.
func Builtin() *Catalog {
	return New(File{
		Version:      "1.0.0",
		Universities: builtinUniversities,
		Courses:      builtinCourses,
	})
}
