package catalog

import "vmm-exam-service/internal/domain"

// Awards are drawn for newly ranked toppers.
var Awards = []string{
	"Cleanest Shelf Arranger",
	"5/5 in Angry Customer Management",
	"Fastest Inventory Counter",
	"Bhindi Stacking Champion",
	"Most Precise Price Tagger",
	"Shopping Bag Folding Master",
	"Display Arrangement Wizard",
	"Receipt Printing Speedster",
	"Best Product Knowledge",
	"Most Efficient Barcoder",
}

// Roles are the positions offered to toppers.
var Roles = []string{
	"Floor Manager",
	"Assistant Floor Manager",
	"Cashier Specialist",
	"Inventory Manager",
	"Floor Executive",
	"Customer Service Lead",
	"Visual Merchandiser",
	"Senior Cashier",
	"Department Head",
	"Tech Support Executive",
}

// DefaultToppers seeds the leaderboard when nothing usable is persisted.
func DefaultToppers() []domain.LeaderboardEntry {
	return []domain.LeaderboardEntry{
		{Name: "Ananya Sharma", City: "Lucknow", Identifier: "VMM25-UP-10123", Score: 98.69, Award: Awards[0], Role: Roles[0]},
		{Name: "Rajesh Kumar", City: "Patna", Identifier: "VMM25-BH-20456", Score: 97.35, Award: Awards[1], Role: Roles[1]},
		{Name: "Priya Mehta", City: "Azamgarh", Identifier: "VMM25-UP-30789", Score: 96.82, Award: Awards[2], Role: Roles[2]},
		{Name: "Vikram Singh", City: "Ghaziabad", Identifier: "VMM25-UP-40987", Score: 95.74, Award: Awards[3], Role: Roles[3]},
		{Name: "Meera Desai", City: "Gorakhpur", Identifier: "VMM25-UP-51234", Score: 94.91, Award: Awards[4], Role: Roles[4]},
		{Name: "Arjun Reddy", City: "Kanpur", Identifier: "VMM25-UP-65432", Score: 94.23, Award: Awards[5], Role: Roles[5]},
		{Name: "Neha Gupta", City: "Varanasi", Identifier: "VMM25-UP-78901", Score: 93.67, Award: Awards[6], Role: Roles[6]},
		{Name: "Sanjay Patel", City: "Meerut", Identifier: "VMM25-UP-89012", Score: 93.15, Award: Awards[7], Role: Roles[7]},
		{Name: "Kavita Joshi", City: "Allahabad", Identifier: "VMM25-UP-90123", Score: 92.88, Award: Awards[8], Role: Roles[8]},
		{Name: "Rahul Verma", City: "Agra", Identifier: "VMM25-UP-02345", Score: 92.46, Award: Awards[9], Role: Roles[9]},
	}
}
