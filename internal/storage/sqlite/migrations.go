package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Composite foreign keys make participant and event deletes cascade to
// expenses and debts.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    last_activity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    event_code TEXT NOT NULL,
    name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    iban TEXT NOT NULL DEFAULT '',
    bic TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (event_code, name),
    FOREIGN KEY (event_code) REFERENCES events(code) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS expenses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_code TEXT NOT NULL,
    payer TEXT NOT NULL,
    amount_cents INTEGER NOT NULL CHECK (amount_cents >= 0),
    description TEXT NOT NULL,
    date INTEGER NOT NULL,
    FOREIGN KEY (event_code, payer) REFERENCES participants(event_code, name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS debts (
    event_code TEXT NOT NULL,
    debtor TEXT NOT NULL,
    creditor TEXT NOT NULL,
    amount_cents INTEGER NOT NULL,
    received INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (event_code, debtor, creditor),
    CHECK (debtor <> creditor),
    FOREIGN KEY (event_code, debtor) REFERENCES participants(event_code, name) ON DELETE CASCADE,
    FOREIGN KEY (event_code, creditor) REFERENCES participants(event_code, name) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_expenses_event_code ON expenses(event_code);
CREATE INDEX IF NOT EXISTS idx_expenses_payer ON expenses(event_code, payer);
CREATE INDEX IF NOT EXISTS idx_debts_creditor ON debts(event_code, creditor);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
