package engine

// TileType classifies a board tile.
type TileType string

const (
	TileStart       TileType = "START"
	TileProperty    TileType = "PROPERTY"
	TileTax         TileType = "TAX"
	TileChance      TileType = "CHANCE"
	TileJail        TileType = "JAIL"
	TileGoToJail    TileType = "GO_TO_JAIL"
	TileFreeParking TileType = "FREE_PARKING"
)

// Tile is one position on the board. Read-only for the lifetime of a game.
type Tile struct {
	ID         string   `json:"id"`
	Type       TileType `json:"type"`
	Name       string   `json:"name"`
	Position   int      `json:"position"`
	Price      int      `json:"price,omitempty"`
	Rent       int      `json:"rent,omitempty"`
	TaxAmount  int      `json:"taxAmount,omitempty"`
	ColorGroup string   `json:"colorGroup,omitempty"`
	Deck       string   `json:"deck,omitempty"` // "A" or "B" for chance tiles
}

// Board is the static tile layout, ordered by position.
type Board struct {
	Tiles []Tile `json:"tiles"`
}

// Size returns the number of tiles on the board.
func (b *Board) Size() int { return len(b.Tiles) }

// TileAt returns the tile at the given board position, or nil.
func (b *Board) TileAt(position int) *Tile {
	for i := range b.Tiles {
		if b.Tiles[i].Position == position {
			return &b.Tiles[i]
		}
	}
	return nil
}

// TileByID returns the tile with the given id, or nil.
func (b *Board) TileByID(id string) *Tile {
	for i := range b.Tiles {
		if b.Tiles[i].ID == id {
			return &b.Tiles[i]
		}
	}
	return nil
}

// JailPosition returns the position of the jail tile, or 0 if the board
// has none.
func (b *Board) JailPosition() int {
	for i := range b.Tiles {
		if b.Tiles[i].Type == TileJail {
			return b.Tiles[i].Position
		}
	}
	return 0
}

// NearestUnownedProperty scans forward from the given position by cyclic
// distance (excluding distance zero) and returns the first property tile
// not owned by any player. Ties are impossible since distance is strict;
// equal-distance candidates resolve by board array order. Returns nil if
// every property is owned.
func (b *Board) NearestUnownedProperty(state *GameState, from int) *Tile {
	size := b.Size()
	if size == 0 {
		return nil
	}
	best := (*Tile)(nil)
	bestDist := size + 1
	for i := range b.Tiles {
		t := &b.Tiles[i]
		if t.Type != TileProperty {
			continue
		}
		if state.OwnerOf(t.ID) != nil {
			continue
		}
		dist := ((t.Position - from) % size + size) % size
		if dist == 0 {
			continue
		}
		if dist < bestDist {
			bestDist = dist
			best = t
		}
	}
	return best
}

// DefaultBoard returns the standard 24-tile layout used when a game is
// created without an explicit board configuration.
func DefaultBoard() *Board {
	street := func(id, name string, pos, price, rent int, group string) Tile {
		return Tile{ID: id, Type: TileProperty, Name: name, Position: pos, Price: price, Rent: rent, ColorGroup: group}
	}
	return &Board{Tiles: []Tile{
		{ID: "start", Type: TileStart, Name: "Start", Position: 0},
		street("harbor-lane", "Harbor Lane", 1, 60, 4, "brown"),
		street("dock-street", "Dock Street", 2, 60, 6, "brown"),
		{ID: "chance-1", Type: TileChance, Name: "Chance", Position: 3, Deck: "A"},
		street("market-row", "Market Row", 4, 100, 8, "lightblue"),
		street("cannery-way", "Cannery Way", 5, 100, 10, "lightblue"),
		{ID: "jail", Type: TileJail, Name: "Jail", Position: 6},
		street("foundry-ave", "Foundry Avenue", 7, 140, 12, "pink"),
		{ID: "tax-1", Type: TileTax, Name: "Income Tax", Position: 8, TaxAmount: 100},
		street("mill-road", "Mill Road", 9, 140, 14, "pink"),
		street("union-square", "Union Square", 10, 180, 16, "orange"),
		{ID: "chance-2", Type: TileChance, Name: "Community Fund", Position: 11, Deck: "B"},
		{ID: "parking", Type: TileFreeParking, Name: "Free Parking", Position: 12},
		street("grand-boulevard", "Grand Boulevard", 13, 220, 18, "red"),
		street("theater-district", "Theater District", 14, 220, 20, "red"),
		{ID: "chance-3", Type: TileChance, Name: "Chance", Position: 15, Deck: "A"},
		street("summit-drive", "Summit Drive", 16, 260, 22, "yellow"),
		street("orchard-heights", "Orchard Heights", 17, 260, 24, "yellow"),
		{ID: "go-to-jail", Type: TileGoToJail, Name: "Go To Jail", Position: 18},
		street("college-green", "College Green", 19, 300, 26, "green"),
		{ID: "tax-2", Type: TileTax, Name: "Luxury Tax", Position: 20, TaxAmount: 75},
		street("cathedral-close", "Cathedral Close", 21, 300, 28, "green"),
		{ID: "chance-4", Type: TileChance, Name: "Community Fund", Position: 22, Deck: "B"},
		street("regent-promenade", "Regent Promenade", 23, 400, 50, "blue"),
	}}
}
