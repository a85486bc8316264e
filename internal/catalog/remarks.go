package catalog

import "vmm-exam-service/internal/domain"

// NoAnswerRemark is returned for unanswered or unknown (question, option) pairs.
const NoAnswerRemark = "No answer recorded. Silence is not a retail strategy!"

// StatusRemarks are the canned remarks shown next to a result.
var StatusRemarks = map[domain.Status][]string{
	domain.StatusSelected: {
		"Congratulations! Somehow you fooled our system. Welcome to Vishal Mega Mart!",
		"Your level of desperation impressed our panel. You're exactly what we need.",
		"Your bhindi arranging skills have earned you a spot in our elite team.",
		"Wow! We're as surprised as you are! Welcome aboard.",
	},
	domain.StatusWaitlisted: {
		"Potential hai, lekin yeh potential 10th class ke baad se waitlist pe hai.",
		"Hmm, interesting. Not good enough, not bad enough. The purgatory of retail.",
		"We're keeping you as a backup. Like that expired product behind the fresh ones.",
		"You showed some promise, but so does every monsoon cloud that doesn't rain.",
	},
	domain.StatusRejected: {
		"Retail mein aapka future utna hi bright hai jitna powercut ke time bulb.",
		"Sorry, but arranging onions in alphabetical order was NOT the right answer.",
		"The committee unanimously agreed: better luck becoming a customer!",
		"Physics walon ko pata hai F=MA. Aapko pata hai F=FAIL!",
	},
}

// DefaultRemark covers statuses without canned remarks.
const DefaultRemark = "Thank you for your interest in Vishal Mega Mart."

// RejectionFeedback is the extra feedback attached to rejected results.
var RejectionFeedback = []string{
	"Your knowledge of retail is as empty as our shelves after a sale.",
	"Sabziyan arrange karna bhi nahi aata, kya karenge retail mein?",
	"Aapke answers itne unique the ki hamara system confuse ho gaya.",
	"Vishal Mega Mart experience: Aap as customer achhe ho, employee nahi.",
}

// Placement maps a practice score to the position it would earn.
func Placement(score int) string {
	switch {
	case score >= 90:
		return "You're now eligible for Floor Manager at Ghaziabad Vishal Mart!"
	case score >= 80:
		return "You qualify for Shelf Specialist position at Azamgarh branch!"
	case score >= 70:
		return "You've been selected as Cashier Trainee at Patna location!"
	default:
		return "You're eligible for Security Officer position at any branch!"
	}
}
