package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS calculations (
    id                   TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL,
    source               TEXT NOT NULL,
    scheme               TEXT NOT NULL,
    property_price       REAL NOT NULL,
    down_payment_percent REAL NOT NULL,
    tenure_years         INTEGER NOT NULL,
    loan_amount          REAL NOT NULL,
    monthly_installment  REAL NOT NULL,
    total_interest       REAL NOT NULL,
    affordability        TEXT NOT NULL,
    input_json           TEXT NOT NULL,
    result_json          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calculations_created ON calculations(created_at);
CREATE INDEX IF NOT EXISTS idx_calculations_scheme ON calculations(scheme);
`
