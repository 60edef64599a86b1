package postgresql

// migrations returns the ordered schema migrations for the gateway tables.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS connections (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL,
				provider_id TEXT NOT NULL,
				external_account_metadata JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_connections_org_provider
				ON connections (org_id, provider_id);

			CREATE TABLE IF NOT EXISTS tokens (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL,
				provider_id TEXT NOT NULL,
				connection_id TEXT REFERENCES connections (id),
				payload JSONB NOT NULL DEFAULT '{}',
				active BOOLEAN NOT NULL DEFAULT TRUE,
				expires_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_tokens_org_provider_active
				ON tokens (org_id, provider_id, active);

			CREATE TABLE IF NOT EXISTS trigger_registrations (
				id TEXT PRIMARY KEY,
				org_id TEXT NOT NULL,
				agent_id TEXT NOT NULL,
				provider_id TEXT NOT NULL,
				trigger_id TEXT NOT NULL,
				connection_id TEXT REFERENCES connections (id),
				params JSONB NOT NULL DEFAULT '{}',
				subscription_metadata JSONB NOT NULL DEFAULT '{}',
				expires_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_trigger_registrations_trigger
				ON trigger_registrations (provider_id, trigger_id);

			CREATE INDEX IF NOT EXISTS idx_trigger_registrations_expires_at
				ON trigger_registrations (expires_at)
				WHERE expires_at IS NOT NULL;
		`,
	}
}
