package catalog

import "vmm-exam-service/internal/domain"

const (
	ExamBankID     = "vmm25-exam"
	PracticeBankID = "vmm25-practice"
)

// Branches is the closed list of branches a candidate may apply to.
var Branches = []string{
	"Lucknow",
	"Azamgarh",
	"Patna",
	"Ghaziabad",
	"Kanpur",
	"Varanasi",
	"Gorakhpur",
	"Allahabad",
	"Meerut",
	"Agra",
}

// SynthesisBranches are the branches attached to fabricated results.
var SynthesisBranches = []string{"Lucknow", "Patna", "Ghaziabad", "Kanpur", "Azamgarh"}

// IsBranch reports whether name is one of Branches.
func IsBranch(name string) bool {
	for _, b := range Branches {
		if b == name {
			return true
		}
	}
	return false
}

// Banks returns every built-in bank keyed by id.
func Banks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		ExamBankID:     ExamBank(),
		PracticeBankID: PracticeBank(),
	}
}

// ExamBank is the timed recruitment exam.
func ExamBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID:    ExamBankID,
		Title: "Vishal Mega Mart Recruitment Exam 2025",
		Questions: []domain.Question{
			{
				ID:     1,
				Prompt: "What is the primary responsibility of a retail floor manager?",
				Options: []domain.Option{
					{ID: "a", Text: "Managing inventory and stock levels"},
					{ID: "b", Text: "Supervising staff and customer service"},
					{ID: "c", Text: "Handling only the cash registers"},
					{ID: "d", Text: "Building store displays exclusively"},
				},
				CorrectOption: "b",
			},
			{
				ID:     2,
				Prompt: "Which of these is the most effective way to handle an upset customer?",
				Options: []domain.Option{
					{ID: "a", Text: "Tell them to speak to someone else"},
					{ID: "b", Text: "Ignore them until they calm down"},
					{ID: "c", Text: "Listen actively and find a solution"},
					{ID: "d", Text: "Offer a discount immediately"},
				},
				CorrectOption: "c",
			},
			{
				ID:     3,
				Prompt: "When arranging bhindi (okra) in the produce section, what is the optimal stacking technique?",
				Options: []domain.Option{
					{ID: "a", Text: "Pyramid formation with the freshest at bottom"},
					{ID: "b", Text: "Random pile to show abundance"},
					{ID: "c", Text: "Neat rows with stems aligned"},
					{ID: "d", Text: "Arranged by size from smallest to largest"},
				},
				CorrectOption: "c",
			},
			{
				ID:     4,
				Prompt: "What should you do if you find expired products on the shelf?",
				Options: []domain.Option{
					{ID: "a", Text: "Leave them for someone else to handle"},
					{ID: "b", Text: "Remove them immediately and report to supervisor"},
					{ID: "c", Text: "Move them to another section"},
					{ID: "d", Text: "Discount them heavily for quick sale"},
				},
				CorrectOption: "b",
			},
			{
				ID:     5,
				Prompt: "A customer has dropped and broken a jar of pickle. What's your first action?",
				Options: []domain.Option{
					{ID: "a", Text: "Ask them to pay for it"},
					{ID: "b", Text: "Secure the area and clean it safely"},
					{ID: "c", Text: "Call your manager immediately"},
					{ID: "d", Text: "Ignore it until your break is over"},
				},
				CorrectOption: "b",
			},
			{
				ID:     6,
				Prompt: "Agar koi customer aapko Parle-G ke baare mein pooche jabki aap Detergent section mein ho, aap kya karenge?",
				Options: []domain.Option{
					{ID: "a", Text: `"Sir, main sirf detergent expert hoon, biscuit nahi bechta"`},
					{ID: "b", Text: `"Wo raha Parle-G. Waise aapko Surf Excel ka naya variant dikha doon?"`},
					{ID: "c", Text: "Politely guide them to the biscuit aisle or find a colleague to help"},
					{ID: "d", Text: `"Parle-G se kapde nahi dhulte sir, try this Tide instead"`},
				},
				CorrectOption: "c",
			},
			{
				ID:     7,
				Prompt: "During inventory, you notice 50 packets of chips missing. What's your response?",
				Options: []domain.Option{
					{ID: "a", Text: "Blame the previous shift and update records"},
					{ID: "b", Text: "Say nothing and hope no one notices"},
					{ID: "c", Text: "Report the discrepancy to your supervisor"},
					{ID: "d", Text: "Buy replacement chips with your salary to avoid trouble"},
				},
				CorrectOption: "c",
			},
			{
				ID:     8,
				Prompt: "Kaunsa discount offer customers ko sabse zyada attract karta hai according to VMM research?",
				Options: []domain.Option{
					{ID: "a", Text: "Buy 1 Get 1 Free"},
					{ID: "b", Text: "50% Off on MRP"},
					{ID: "c", Text: "Buy for ₹999 and get ₹100 cashback"},
					{ID: "d", Text: "Free samosa with purchase above ₹2000"},
				},
				CorrectOption: "a",
			},
			{
				ID:     9,
				Prompt: "If you see Sharma ji filling his shopping bag with extra free samples, you should:",
				Options: []domain.Option{
					{ID: "a", Text: "Join him and take some for yourself"},
					{ID: "b", Text: "Take a selfie with him for Instagram"},
					{ID: "c", Text: "Politely inform him samples are limited to one per customer"},
					{ID: "d", Text: `Announce on store mic: "Sharma ji pakde gaye!"`},
				},
				CorrectOption: "c",
			},
			{
				ID:     10,
				Prompt: "The true measure of a successful cashier at VMM is:",
				Options: []domain.Option{
					{ID: "a", Text: "Number of items scanned per minute"},
					{ID: "b", Text: "How politely they can say 'Carry bag lenge? ₹5 extra lagega'"},
					{ID: "c", Text: "Balance of efficiency and customer satisfaction"},
					{ID: "d", Text: "Talent in convincing customers to take membership cards"},
				},
				CorrectOption: "c",
			},
		},
	}
}

// PracticeBank is the untimed mock test. Feedback lives on each option.
func PracticeBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID:    PracticeBankID,
		Title: "Vishal Mega Mart Mock Test",
		Questions: []domain.Question{
			{
				ID:     1,
				Prompt: "A customer is angry because they can't find the discount section. What do you do?",
				Options: []domain.Option{
					{ID: "a", Text: "Tell them to look harder", Feedback: "Not the customer service Vishal is known for!"},
					{ID: "b", Text: "Hide in the storage room", Feedback: "We can see you hiding behind those boxes..."},
					{ID: "c", Text: "Politely guide them to the section", Feedback: "Perfect! Customer service champion!"},
					{ID: "d", Text: "Suggest they try Big Bazaar instead", Feedback: "That's a quick way to lose your job!"},
				},
			},
			{
				ID:     2,
				Prompt: "How would you arrange vegetables in the produce section?",
				Options: []domain.Option{
					{ID: "a", Text: "By color to make a rainbow display", Feedback: "Creative but impractical!"},
					{ID: "b", Text: "Alphabetically - Apples to Zucchini", Feedback: "Interesting... but customers don't shop in alphabetical order!"},
					{ID: "c", Text: "By size, largest to smallest", Feedback: "The tiny vegetables would get crushed!"},
					{ID: "d", Text: "By type and freshness", Feedback: "Perfect! You've passed 'VMM Veggie Arrangement 101'!"},
				},
			},
			{
				ID:     3,
				Prompt: "What's the best way to handle inventory that's about to expire?",
				Options: []domain.Option{
					{ID: "a", Text: "Mark it down and place on clearance", Feedback: "Smart business decision!"},
					{ID: "b", Text: "Change the expiry date stickers", Feedback: "That's illegal! And we caught you on camera!"},
					{ID: "c", Text: "Hide it behind newer products", Feedback: "That's how you get health violations!"},
					{ID: "d", Text: "Take it home for yourself", Feedback: "That's called 'stealing' and is frowned upon!"},
				},
			},
			{
				ID:     4,
				Prompt: "The store is closing in 5 minutes but customers are still shopping. What do you do?",
				Options: []domain.Option{
					{ID: "a", Text: "Turn off the lights to give them a hint", Feedback: "That's one way to get negative reviews!"},
					{ID: "b", Text: "Make loud announcements every 30 seconds", Feedback: "Annoying but effective..."},
					{ID: "c", Text: "Politely inform them the store is closing soon", Feedback: "Professional approach! You're management material!"},
					{ID: "d", Text: "Start loudly cleaning around them", Feedback: "Passive-aggressive, but it works!"},
				},
			},
			{
				ID:     5,
				Prompt: "What is the most important quality in a Vishal Mega Mart employee?",
				Options: []domain.Option{
					{ID: "a", Text: "The ability to fold shirts perfectly", Feedback: "Important, but there's more to retail!"},
					{ID: "b", Text: "Being able to memorize all 10,000+ SKUs", Feedback: "Impressive, but we have scanners for that!"},
					{ID: "c", Text: "Customer service and positive attitude", Feedback: "Exactly! You're Vishal material!"},
					{ID: "d", Text: "Speed-stacking skills for making impressive displays", Feedback: "Save that for the grocery olympics!"},
				},
			},
		},
	}
}
