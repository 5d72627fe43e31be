// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package replacement

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"
)

// Closed word pools for pseudonym generation. All values are fictitious.
var (
	firstNames = []string{
		"Alex", "Bailey", "Cameron", "Dakota", "Emerson", "Finley", "Jordan",
		"Morgan", "Parker", "Quinn", "Riley", "Sam", "Taylor", "Avery",
		"Casey", "Jamie", "Kendall",
	}
	lastNames = []string{
		"Smith", "Johnson", "Williams", "Jones", "Brown", "Davis", "Miller",
		"Wilson", "Anderson", "Thomas", "Jackson", "White", "Harris",
		"Martin", "Thompson",
	}
	cityNames = []string{
		"Westfield", "Fairview", "Riverdale", "Springwood", "Lakeside",
		"Oakridge", "Pine Valley", "Meadowbrook", "Greenville", "Brookside",
		"Millfield", "Cedarville",
	}
	streetNames = []string{
		"Main St", "Maple Ave", "Oak Dr", "Cedar Ln", "Elm St",
		"Washington Ave", "Park Rd", "Highland Ave", "Sunset Blvd",
		"Lake View Dr", "Forest Ave",
	}
	regionNames = []string{
		"North Region", "South Region", "East Region", "West Region",
		"Central Area", "Northeast Zone", "Southwest Territory",
	}
	orgPrefixes = []string{
		"Global", "National", "International", "United", "Advanced",
		"Technical", "Universal", "Dynamic", "Innovative", "Strategic",
		"Progressive", "Premier",
	}
	orgCores = []string{
		"Solutions", "Systems", "Technologies", "Industries", "Enterprises",
		"Services", "Associates", "Partners", "Consulting", "Group",
		"Network",
	}
	orgSuffixes = []string{
		"Inc.", "Corp.", "LLC", "Ltd.", "Association", "Foundation",
		"Agency", "Company", "Organization", "Consortium", "Institute",
	}
)

// secureRandom returns a uniform int in [0, max) from crypto/rand, falling
// back to a clock-derived value if the system source is unavailable.
func secureRandom(max int) int {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return int(time.Now().UnixNano()) % max
	}
	return int(n.Int64())
}

// randomDigits returns n random decimal digits.
func randomDigits(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + secureRandom(10)))
	}
	return b.String()
}
