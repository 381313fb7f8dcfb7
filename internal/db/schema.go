package db

// SchemaSQL defines the catalog tables read by the assistant and the
// rate_limit table used by the shared governor store.
const SchemaSQL = `
    -- ==========================================================================
    -- SERVICE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS service SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON service TYPE string;
    DEFINE FIELD IF NOT EXISTS slug ON service TYPE string;
    DEFINE FIELD IF NOT EXISTS short_description ON service TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS features ON service TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS keywords ON service TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS success_path ON service TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS cta_label ON service TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS active ON service TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS sort_order ON service TYPE int DEFAULT 10;

    DEFINE INDEX IF NOT EXISTS service_slug ON service FIELDS slug UNIQUE;
    DEFINE INDEX IF NOT EXISTS service_active ON service FIELDS active, sort_order;

    -- ==========================================================================
    -- SHOW TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS show SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON show TYPE string;

    -- ==========================================================================
    -- EPISODE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS episode SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON episode TYPE string;
    DEFINE FIELD IF NOT EXISTS show ON episode TYPE option<record<show>>;
    DEFINE FIELD IF NOT EXISTS description ON episode TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS tags ON episode TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS published_at ON episode TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS youtube_url ON episode TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS page_path ON episode TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS active ON episode TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS sort_order ON episode TYPE int DEFAULT 100;

    DEFINE INDEX IF NOT EXISTS episode_active ON episode FIELDS active, sort_order;

    -- ==========================================================================
    -- RATE LIMIT TABLE (fixed windows, reset_at in unix milliseconds)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS rate_limit SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS count ON rate_limit TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS reset_at ON rate_limit TYPE int DEFAULT 0;
`
