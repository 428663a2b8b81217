package sqlite

// Schema statements are executed in order by EnsureSchema. All of them are
// idempotent, so re-running the pipeline against an existing store is safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS expansions (
  expansion_id INTEGER PRIMARY KEY AUTOINCREMENT,
  name         TEXT NOT NULL UNIQUE,
  generation   TEXT NOT NULL DEFAULT 'Unknown'
);`,

	`CREATE TABLE IF NOT EXISTS cards (
  card_id        INTEGER PRIMARY KEY AUTOINCREMENT,
  expansion_id   INTEGER NOT NULL
                 REFERENCES expansions(expansion_id)
                 ON DELETE CASCADE ON UPDATE CASCADE,
  pokemon_name   TEXT    NOT NULL,
  card_type      TEXT    NOT NULL,
  card_number    TEXT    NOT NULL DEFAULT '',
  set_total      INTEGER NOT NULL DEFAULT 0,
  price          REAL    NOT NULL CHECK (price >= 0),
  is_rare        INTEGER NOT NULL,
  rarity_level   TEXT    NOT NULL,
  rarity_score   INTEGER NOT NULL,
  price_category TEXT    NOT NULL DEFAULT ''
);`,

	`CREATE TABLE IF NOT EXISTS etl_metadata (
  run_id            INTEGER PRIMARY KEY AUTOINCREMENT,
  run_at            TEXT    NOT NULL,
  cards_loaded      INTEGER NOT NULL,
  expansions_loaded INTEGER NOT NULL,
  duration_ms       INTEGER NOT NULL,
  status            TEXT    NOT NULL,
  error             TEXT    NOT NULL DEFAULT ''
);`,

	`CREATE INDEX IF NOT EXISTS idx_cards_expansion ON cards(expansion_id);`,
	`CREATE INDEX IF NOT EXISTS idx_cards_rarity ON cards(rarity_level);`,
	`CREATE INDEX IF NOT EXISTS idx_cards_price ON cards(price);`,
	`CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(pokemon_name);`,

	`CREATE VIEW IF NOT EXISTS vw_card_details AS
SELECT c.card_id, c.pokemon_name, c.card_type, c.card_number, c.set_total,
       c.price, c.is_rare, c.rarity_level, c.rarity_score, c.price_category,
       e.name AS expansion_name, e.generation
FROM cards c
JOIN expansions e ON e.expansion_id = c.expansion_id;`,

	`CREATE VIEW IF NOT EXISTS vw_statistics AS
SELECT COUNT(*)                                    AS total_cards,
       COUNT(DISTINCT pokemon_name)                AS unique_pokemon,
       (SELECT COUNT(*) FROM expansions)           AS total_expansions,
       COALESCE(ROUND(AVG(price), 2), 0)           AS avg_price,
       COALESCE(MIN(price), 0)                     AS min_price,
       COALESCE(MAX(price), 0)                     AS max_price,
       COALESCE(SUM(CASE WHEN is_rare <> 0 THEN 1 ELSE 0 END), 0) AS rare_cards
FROM cards;`,

	`CREATE VIEW IF NOT EXISTS vw_prices_by_generation AS
SELECT e.generation          AS generation,
       COUNT(*)              AS card_count,
       ROUND(AVG(c.price), 2) AS avg_price,
       MIN(c.price)          AS min_price,
       MAX(c.price)          AS max_price
FROM cards c
JOIN expansions e ON e.expansion_id = c.expansion_id
GROUP BY e.generation
ORDER BY e.generation;`,

	`CREATE VIEW IF NOT EXISTS vw_rarity_distribution AS
SELECT rarity_level,
       COUNT(*) AS card_count,
       ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM cards), 2) AS percentage
FROM cards
GROUP BY rarity_level
ORDER BY MIN(rarity_score);`,
}
