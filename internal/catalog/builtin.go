// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package catalog

import "regexp"

// sensitivityCategories maps each level to the categories it enables.
// Inclusion is monotonic: low ⊂ medium ⊂ high.
var sensitivityCategories = map[Sensitivity][]Category{
	SensitivityLow:    {CategoryPII, CategoryCredentials},
	SensitivityMedium: {CategoryPII, CategoryCredentials, CategoryPHI, CategoryWorkplace},
	SensitivityHigh: {
		CategoryPII, CategoryCredentials, CategoryPHI,
		CategoryWorkplace, CategoryFinancial, CategoryLocations,
	},
}

// builtinRules is the preset rule set. Labeled rules capture only the value
// after the label so "SSN: 123-45-6789" redacts the number, not the label.
// Bare rules carry no capture group and redact the whole match.
//
// Patterns avoid unbounded alternation-with-repetition so that worst-case
// matching stays linear on adversarial input.
var builtinRules = map[Category]map[string]string{
	CategoryPII: {
		"NAME":           `\b(?:Name|Full Name):\s*([A-Z][a-z]+(?:\s[A-Z][a-z]+)*)\b`,
		"DOB":            `\b(?:Date of Birth|DOB|Birth Date):\s*(\d{1,2}/\d{1,2}/\d{2,4})\b`,
		"SSN_LABELED":    `\b(?:SSN|Social Security Number):\s*(\d{3}-?\d{2}-?\d{4})\b`,
		"SSN":            `\b\d{3}-\d{2}-\d{4}\b`,
		"EMAIL":          `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
		"PHONE":          `(?:\(\d{3}\)\s?|\b\d{3}[-. ])\d{3}[-. ]\d{4}\b`,
		"DRIVER_LICENSE": `\b(?:Driver's License|DL|License):\s*([A-Z]\d{7})\b`,
		"PASSPORT":       `\b(?:Passport|Passport Number):\s*([A-Z]\d{8})\b`,
		"ADDRESS":        `\b(?:Address|Home Address|Residence):\s*(\d{1,5}\s+[A-Za-z0-9 ]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr))\b`,
	},
	CategoryFinancial: {
		"CREDIT_CARD_LABELED": `\b(?:Credit Card|CC|Card Number):\s*(\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4})\b`,
		"CREDIT_CARD":         `\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{4}\b`,
		"EXPIRATION_DATE":     `\b(?:Expiration|Exp|Expiry):\s*((?:0[1-9]|1[0-2])/\d{2})\b`,
		"CVV":                 `\b(?:CVV|CVC|Security Code):\s*(\d{3,4})\b`,
		"BANK_ACCOUNT":        `\b(?:Bank Account|Account Number|Acct):\s*(\d{8,12})\b`,
		"ROUTING_NUMBER":      `\b(?:Routing Number|RTN|Routing):\s*(0\d{8})\b`,
		"BITCOIN_WALLET":      `\b(?:Bitcoin|BTC|Wallet):\s*([13][a-km-zA-HJ-NP-Z1-9]{25,34})\b`,
	},
	CategoryPHI: {
		"PATIENT_ID":       `\b(?:Patient ID|Patient Identifier):\s*(PAT-\d{8})\b`,
		"INSURANCE_POLICY": `\b(?:Insurance Policy|Policy Number):\s*(INS-\d{7})\b`,
		"MEDICAL_RECORD":   `\b(?:Medical Record|MRN|Record Number):\s*(MRN-\d{10})\b`,
		"DIAGNOSIS":        `\b(?:Diagnosis|Condition):\s*([A-Za-z0-9 ]+ ?\([A-Z]\d{2}\.\d{1,2}\))`,
		"MEDICATION":       `\b(?:Medication|Prescription|Rx):\s*([A-Za-z]+ \d+ ?mg (?:twice|once|daily|weekly))\b`,
	},
	CategoryWorkplace: {
		"EMPLOYER":    `\b(?:Employer|Company|Organization):\s*([A-Za-z0-9 ]+(?:, ?Inc\.?|Corporation|Corp\.|LLC|Ltd\.))`,
		"EMPLOYEE_ID": `\b(?:Employee ID|Emp ID|ID Number):\s*(EMP-\d{5})\b`,
		"WORK_EMAIL":  `\b(?:Work Email|Business Email|Corporate Email):\s*([A-Za-z0-9._%+-]+@(?:[A-Za-z0-9-]+\.)+[A-Za-z]{2,})\b`,
		"SUPERVISOR":  `\b(?:Supervisor|Manager|Boss):\s*([A-Z][a-z]+(?:\s[A-Z][a-z]+)*)\b`,
		"SALARY":      `\b(?:Salary|Pay|Compensation):\s*(\$\d{1,3}(?:,\d{3})*(?:\.\d{2})?\s(?:annually|per year|/year))\b`,
	},
	CategoryCredentials: {
		"USERNAME":      `\b(?:Username|Login|Account):\s*([a-zA-Z0-9][a-zA-Z0-9._-]{2,19})\b`,
		"PASSWORD":      `\b(?:Password|Pwd|Pass):\s*([A-Za-z\d@#$%^&+=]{8,})`,
		"API_KEY":       `\b(?:sk|pk)_(?:test|live)_[A-Za-z0-9]{24,}\b`,
		"API_KEY_LABELED": `\b(?:API Key|Secret Key|Key):\s*((?:sk|pk)_(?:test|live)_[A-Za-z0-9]{24,})\b`,
		"WIFI_PASSWORD": `\b(?:WiFi Password|WLAN Password|Network Key):\s*([A-Za-z\d@#$%^&+=]{8,})`,
	},
	CategoryLocations: {
		"STREET_ADDRESS": `\b\d{1,5}\s+[A-Z][A-Za-z]*(?:\s[A-Z][A-Za-z]*)*\s(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr)\b`,
		"CITY_STATE_ZIP": `\b[A-Z][A-Za-z]+(?: [A-Z][A-Za-z]+)*, [A-Z]{2} \d{5}(?:-\d{4})?\b`,
	},
}

func compileBuiltinRules() map[Category]map[string]*regexp.Regexp {
	compiled := make(map[Category]map[string]*regexp.Regexp, len(builtinRules))
	for category, rules := range builtinRules {
		compiled[category] = make(map[string]*regexp.Regexp, len(rules))
		for name, pattern := range rules {
			// Built-in patterns are fixed at build time; a failure here is a
			// programming error, so MustCompile is appropriate.
			compiled[category][name] = regexp.MustCompile(pattern)
		}
	}
	return compiled
}
