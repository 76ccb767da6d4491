package ledgermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	ledgerdb "github.com/open-forensics/tab-service/app/modules/ledger/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tab_audit_entries table...")

		if _, err := db.NewCreateTable().Model((*ledgerdb.TabAuditEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewCreateIndex().
			Model((*ledgerdb.TabAuditEntry)(nil)).
			Index("idx_audit_entries_tournament_created").
			Column("tournament_id", "created_at").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().
			Model((*ledgerdb.TabAuditEntry)(nil)).
			Index("idx_audit_entries_entity").
			Column("entity_type", "entity_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tab_audit_entries table...")

		if _, err := db.NewDropTable().Model((*ledgerdb.TabAuditEntry)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
