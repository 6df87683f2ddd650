package timescaledb

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb;`

const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS cleaning_runs (
    id uuid PRIMARY KEY,
    farm text NOT NULL DEFAULT '',
    source text NOT NULL DEFAULT '',
    started_at timestamp WITH TIME ZONE NOT NULL,
    finished_at timestamp WITH TIME ZONE NOT NULL,
    turbines integer NOT NULL,
    cut_in float8 NOT NULL,
    rated float8 NOT NULL,
    cut_out float8 NOT NULL,
    k_up float8 NOT NULL,
    k_low float8 NOT NULL,
    anomalous boolean NOT NULL,
    bin_width float8 NOT NULL,
    row_count integer NOT NULL,
    degenerate_bins integer NOT NULL
);`

const createReadingsTableSQL = `
CREATE TABLE IF NOT EXISTS turbine_readings_clean (
    time timestamp WITH TIME ZONE NOT NULL,
    run_id uuid NOT NULL REFERENCES cleaning_runs (id) ON DELETE CASCADE,
    turbine smallint NOT NULL,
    wind_speed float4 NULL,
    power float4 NULL,
    flag smallint NOT NULL DEFAULT 0
);`

const createReadingsHypertableSQL = `SELECT create_hypertable('turbine_readings_clean', 'time', if_not_exists => true);`

const createReadingsIndexSQL = `CREATE INDEX IF NOT EXISTS turbine_readings_clean_run_turbine_idx ON turbine_readings_clean (run_id, turbine, time DESC);`

const createAggregatesTableSQL = `
CREATE TABLE IF NOT EXISTS farm_aggregates_clean (
    time timestamp WITH TIME ZONE NOT NULL,
    run_id uuid NOT NULL REFERENCES cleaning_runs (id) ON DELETE CASCADE,
    wind_speed_avg float4 NULL,
    wind_speed_std float4 NULL,
    power_avg float4 NULL
);`

const createAggregatesHypertableSQL = `SELECT create_hypertable('farm_aggregates_clean', 'time', if_not_exists => true);`
