package store

import "context"

type numerologySeed struct {
	position    int
	description string
	emoji       string
	amount      string
	equality    string
}

// defaultNumerology is the out-of-the-box list of sat-amount "donation"
// callouts shown next to a boost, ordered by evaluation position (more
// specific/longer digit patterns before shorter ones).
var defaultNumerology = []numerologySeed{
	{1, "Satchel of Richards Donation x 7", "🍆🍆🍆🍆🍆🍆🍆", "1111111", "="},
	{2, "Satchel of Richards Donation x 6", "🍆🍆🍆🍆🍆🍆", "111111", "="},
	{3, "Satchel of Richards Donation x 5", "🍆🍆🍆🍆🍆", "11111", "="},
	{4, "Satchel of Richards Donation x 4", "🍆🍆🍆🍆", "1111", "="},
	{5, "Satchel of Richards Donation x 3", "🍆🍆🍆", "111", "="},
	{6, "Satchel of Richards Donation x 2", "🍆🍆", "11", "="},
	{7, "Ducks In a Row Donation x 7", "🦆🦆🦆🦆🦆🦆🦆", "2222222", "="},
	{8, "Ducks In a Row Donation x 6", "🦆🦆🦆🦆🦆🦆", "222222", "="},
	{9, "Ducks In a Row Donation x 5", "🦆🦆🦆🦆🦆", "22222", "="},
	{10, "Ducks In a Row Donation x 4", "🦆🦆🦆🦆", "2222", "="},
	{11, "Ducks In a Row Donation x 3", "🦆🦆🦆", "222", "="},
	{12, "Ducks In a Row Donation x 2", "🦆🦆", "22", "="},
	{13, "Swan Donation x 7", "🦢🦢🦢🦢🦢🦢🦢", "5555555", "="},
	{14, "Swan Donation x 6", "🦢🦢🦢🦢🦢🦢", "555555", "="},
	{15, "Swan Donation x 5", "🦢🦢🦢🦢🦢", "55555", "="},
	{16, "Swan Donation x 4", "🦢🦢🦢🦢", "5555", "="},
	{17, "Swan Donation x 3", "🦢🦢🦢", "555", "="},
	{18, "Swan Donation x 2", "🦢🦢", "55", "="},
	{19, "Countdown Donation x 5", "💥💥💥💥💥", "7654321", "=~"},
	{20, "Countdown Donation x 4", "💥💥💥💥", "654321", "=~"},
	{21, "Countdown Donation x 3", "💥💥💥", "54321", "=~"},
	{22, "Countdown Donation x 2", "💥💥", "4321", "=~"},
	{23, "Countdown Donation", "💥", "321", "=~"},
	{24, "Countup Donation x 5", "🔼🔼🔼🔼🔼", "1234567", "=~"},
	{25, "Countup Donation x 4", "🔼🔼🔼🔼", "123456", "=~"},
	{26, "Countup Donation x 3", "🔼🔼🔼", "12345", "=~"},
	{27, "Countup Donation x 2", "🔼🔼", "1234", "=~"},
	{28, "Countup Donation", "🔼", "123", "=~"},
	{29, "Bowler Donation x 3 +🦃", "🎳🎳🎳🦃", "101010", "="},
	{30, "Bowler Donation x 2", "🎳🎳", "1010", "="},
	{31, "Bowler Donation", "🎳", "10", "="},
	{32, "Dice Donation", "🎲", "11", "=~"},
	{33, "Bitcoin donation", "🪙", "21", "=~"},
	{34, "Magic Number Donation", "✨", "33", "=~"},
	{35, "Swasslenuff Donation", "💋", "69", "=~"},
	{36, "Greetings Donation", "👋", "73", "=~"},
	{37, "Love and Kisses Donation", "🥰", "88", "=~"},
	{38, "Stoner Donation", "✌👽💨", "420", "=~"},
	{39, "Devil Donation", "😈", "666", "=~"},
	{40, "Angel Donation", "😇", "777", "=~"},
	{41, "America Fuck Yeah Donation", "🇺🇸", "1776", "=~"},
	{42, "Canada Donation", "🇨🇦", "1867", "=~"},
	{43, "Boobs Donation", "🐱🐱", "6006", "=~"},
	{44, "Boobs Donation", "🐱🐱", "8008", "=~"},
	{45, "Wolf Donation", "🐺", "9653", "=~"},
	{46, "Boost Donation", "🚀", "30057", "=~"},
	{47, "Pi Donation x 5", "🥧🥧🥧🥧🥧", "3141592", "=~"},
	{48, "Pi Donation x 4", "🥧🥧🥧🥧", "314159", "=~"},
	{49, "Pi Donation x 3", "🥧🥧🥧", "31415", "=~"},
	{50, "Pi Donation x 2", "🥧🥧", "3141", "=~"},
	{51, "Pi Donation", "🥧", "314", "=~"},
	{52, "Poo donation", "💩", "9", "<"},
	{53, "Lit donation 100k", "🔥", "100000", ">="},
	{54, "Lit donation 50k", "🔥", "50000", ">="},
	{55, "Lit donation 10k", "🔥", "10000", ">="},
}

func (s *Store) insertDefaultNumerology(ctx context.Context) error {
	for _, n := range defaultNumerology {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO numerology (position, description, emoji, amount, equality) VALUES (?, ?, ?, ?, ?)`,
			n.position, n.description, n.emoji, n.amount, n.equality,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
