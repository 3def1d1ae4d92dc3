package db

// CategoryFixtures provides sample categories for seeding a dev instance
var CategoryFixtures = []map[string]interface{}{
	{"name": "Travel"},
	{"name": "Food"},
	{"name": "Technology"},
	{"name": "Music"},
}

// UserFixtures provides sample accounts for seeding. The caller fills in
// password_hash before inserting.
var UserFixtures = []map[string]interface{}{
	{
		"username":   "demo-ramona",
		"email":      "ramona@inkpost.example",
		"first_name": "Ramona",
		"last_name":  "Silva",
		"is_admin":   false,
	},
	{
		"username":   "demo-theo",
		"email":      "theo@inkpost.example",
		"first_name": "Theo",
		"last_name":  "Park",
		"is_admin":   false,
	},
}

// PostFixtures provides sample posts for seeding. Owner IDs have to be
// filled in with real user IDs after users exist.
func PostFixtures(ownerIDs []string) []map[string]interface{} {
	if len(ownerIDs) == 0 {
		return []map[string]interface{}{}
	}

	owner := func(i int) string {
		return ownerIDs[i%len(ownerIDs)]
	}

	return []map[string]interface{}{
		{
			"title":    "A week in Lisbon",
			"body":     "Seven days of pastel de nata and miradouros...",
			"owner_id": owner(0),
		},
		{
			"title":    "My sourdough starter finally works",
			"body":     "After three failed attempts, here is what changed...",
			"owner_id": owner(1),
		},
		{
			"title":    "Notes on switching to a split keyboard",
			"body":     "The first two weeks were rough...",
			"owner_id": owner(0),
		},
	}
}
