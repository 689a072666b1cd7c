// Package moderation screens user-submitted text for profanity before it
// is accepted into comments or story submissions.
package moderation

import (
	"regexp"
	"strings"
)

var badWords = []string{
	// English / global
	"anal", "anus", "arse", "ass", "asshole", "ass-hat", "ass-jabber", "ass-pirate",
	"bastard", "beastiality", "bestiality", "bitch", "bitching", "bloody", "blowjob",
	"bollocks", "boner", "boob", "bugger", "bum", "butt", "buttplug",
	"clitoris", "cock", "cocksucker", "coon", "crap", "cunt", "cum", "cumshot",
	"damn", "dildo", "dyke", "erection",
	"fag", "faggot", "fanny", "felching", "fellate", "fellatio", "flange",
	"fuck", "fucked", "fucker", "fucking", "goddamn", "godsdamn",
	"hell", "homo", "hooker", "horny",
	"jerk", "jizz", "knob", "knobend", "labia", "lmao", "lmfao",
	"muff", "motherfucker",
	"nigger", "nigga", "nips",
	"piss", "pissed", "penis", "pussy", "prick",
	"queer", "scrotum", "sex", "shit", "shitting", "shitter", "slut",
	"spunk", "smegma", "testicle", "tit", "turd", "twat", "vagina",
	"wank", "whore", "fuckall", "fuckoff", "bullshit", "dumbass", "retard",

	// Hindi / Hinglish social-media slang
	"bc", "bkl", "mc", "madarchod", "behenchod", "bhosdike", "bhosdika", "bhosda",
	"chutiya", "chutiye", "chu", "chus", "chusle", "chuswa", "chuswaunga", "gandu", "gaand",
	"gaandfat", "gaandmara", "gaandmarike", "randi", "rand", "randwa",
	"launda", "laundi", "loda", "lauda", "lund", "teri maa chodunga", "choot", "chut", "chutmarike",
	"chutiyapa", "chudai", "chudne", "chudti", "chudwa", "chuda", "chudega", "chudegi",
	"harami", "saala", "sala", "kutta", "kutti", "kamina", "kamini", "ullu", "ullu ka pattha",
	"bewakoof", "ullu ke bacche", "nalayak", "nikamma", "tharki", "lafanga",
	"faltu", "jhatu", "jhaat", "jhaantu", "fattu", "bakchod", "bakchodi", "bawaal",
	"chirkut", "ghanta", "item", "tatti", "potty", "suar", "suar ke bacche", "kuttiya",
	"kutte", "kuttey", "tatte", "jhant", "jhantoo", "randiya", "randy", "sexi", "sexy",

	// Regional slang
	"launde", "tapori", "aukat", "aukat me reh", "kat le", "scene ban gaya",
	"jhantu", "patakha", "lukka", "tapka", "faltu banda", "sasta banda",

	// Mixed insults
	"fuckhead", "jerkoff", "dumbfuck", "idiot", "stupid", "moron", "loser", "simp",
	"cringe", "weirdo", "shithead", "prickhead", "bitchass", "pisshead",
	"dumbshit", "fucktard", "tattiwala", "chutiapa", "jhantuwa", "chinal",
	"tharak", "tharakii", "randibaaz", "panauti",

	// Abbreviations used offensively
	"lmaoo", "lmfaoo", "wtf", "stfu", "gtfo", "ffs", "omfg", "mf", "af", "tf",
	"idgaf", "fml", "omg", "smh", "fkn", "fkng", "fknc", "xd",
}

var badWordPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(badWords, "|") + `)\b`)

// Contains reports whether text includes a flagged word.
func Contains(text string) bool {
	if text == "" {
		return false
	}
	return badWordPattern.MatchString(text)
}

// Censor replaces each flagged word with asterisks of the same length.
func Censor(text string) string {
	if text == "" {
		return text
	}
	return badWordPattern.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat("*", len(match))
	})
}

// ErrorMessage is the user-facing rejection text for flagged submissions.
func ErrorMessage() string {
	return "Your comment contains inappropriate language. Please remove any profanities and try again."
}
