package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'truck_occupancy') THEN
			CREATE TYPE truck_occupancy AS ENUM ('AVAILABLE', 'ON_DUTY', 'INACTIVE', 'SOLD', 'INSURANCE_CLAIM');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'truck_ownership') THEN
			CREATE TYPE truck_ownership AS ENUM ('OWNED', 'SUBCONTRACTOR');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'driver_status') THEN
			CREATE TYPE driver_status AS ENUM ('ACTIVE', 'ON_DUTY', 'INACTIVE');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'assignment_status') THEN
			CREATE TYPE assignment_status AS ENUM ('ACTIVE', 'REVOKED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'maintenance_status') THEN
			CREATE TYPE maintenance_status AS ENUM ('IN_PROGRESS', 'COMPLETED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'maintenance_category') THEN
			CREATE TYPE maintenance_category AS ENUM ('PM', 'CM');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'renewal_progress') THEN
			CREATE TYPE renewal_progress AS ENUM ('PENDING', 'IN_PROGRESS', 'COMPLETED');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'renewal_type') THEN
			CREATE TYPE renewal_type AS ENUM ('TAX', 'INSURANCE');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS trucks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate_number VARCHAR(32) NOT NULL UNIQUE,
		model VARCHAR(128),
		ownership truck_ownership NOT NULL DEFAULT 'OWNED',
		occupancy truck_occupancy NOT NULL DEFAULT 'AVAILABLE',
		maintenance_hold BOOLEAN NOT NULL DEFAULT FALSE,
		tax_progress renewal_progress NOT NULL DEFAULT 'PENDING',
		tax_responsible VARCHAR(128),
		tax_expense DOUBLE PRECISION NOT NULL DEFAULT 0,
		tax_payment_method VARCHAR(64),
		tax_document_ref TEXT,
		tax_expiry_date TIMESTAMPTZ,
		insurance_progress renewal_progress NOT NULL DEFAULT 'PENDING',
		insurance_responsible VARCHAR(128),
		insurance_expense DOUBLE PRECISION NOT NULL DEFAULT 0,
		insurance_payment_method VARCHAR(64),
		insurance_document_ref TEXT,
		insurance_expiry_date TIMESTAMPTZ,
		current_odometer BIGINT NOT NULL DEFAULT 0,
		next_service_odometer BIGINT,
		next_service_date TIMESTAMPTZ,
		last_service_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(128) NOT NULL,
		status driver_status NOT NULL DEFAULT 'ACTIVE',
		current_assignment_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		truck_id UUID NOT NULL,
		driver_id UUID NOT NULL,
		driver_name VARCHAR(128),
		truck_plate VARCHAR(32),
		truck_model VARCHAR(128),
		status assignment_status NOT NULL DEFAULT 'ACTIVE',
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		revoked_at TIMESTAMPTZ,
		created_by VARCHAR(128),
		revoked_by VARCHAR(128),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_truck_id ON assignments (truck_id);`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_driver_id ON assignments (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_status ON assignments (status);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_assignments_active_driver
		ON assignments (driver_id) WHERE status = 'ACTIVE';`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_assignments_active_pair
		ON assignments (truck_id, driver_id) WHERE status = 'ACTIVE';`,
	`CREATE TABLE IF NOT EXISTS truck_assignment_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		truck_id UUID NOT NULL,
		assignment_id UUID NOT NULL,
		driver_id UUID NOT NULL,
		driver_name VARCHAR(128),
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_truck_assignment_entries_truck_id ON truck_assignment_entries (truck_id);`,
	`CREATE INDEX IF NOT EXISTS idx_truck_assignment_entries_assignment_id ON truck_assignment_entries (assignment_id);`,
	`CREATE TABLE IF NOT EXISTS maintenance_jobs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		truck_id UUID NOT NULL,
		category maintenance_category NOT NULL,
		service_description TEXT,
		status maintenance_status NOT NULL DEFAULT 'IN_PROGRESS',
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		labor_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		parts_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		odometer_at_service BIGINT,
		next_service_odometer BIGINT,
		provider VARCHAR(128),
		payment_method VARCHAR(64),
		receipt_ref TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_jobs_truck_id ON maintenance_jobs (truck_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_maintenance_jobs_open_truck
		ON maintenance_jobs (truck_id) WHERE status = 'IN_PROGRESS';`,
	`CREATE TABLE IF NOT EXISTS renewal_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		truck_id UUID NOT NULL,
		renewal_type renewal_type NOT NULL,
		expiry_date TIMESTAMPTZ,
		expense DOUBLE PRECISION NOT NULL DEFAULT 0,
		payment_method VARCHAR(64),
		responsible VARCHAR(128),
		completed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_renewal_logs_truck_id ON renewal_logs (truck_id);`,
}

// Migrate применяет идемпотентные миграции при старте сервиса.
// Частичные уникальные индексы на assignments и maintenance_jobs дублируют
// инварианты движка назначений на уровне базы.
func Migrate(database *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
