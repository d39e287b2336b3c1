// File path: internal/store/migrate.go
package store

// schemaStatements creates the game catalog tables plus the flattened views
// the query paths read from. The view names and column aliases match the
// catalog the import tooling populates, so generated SQL and batched lookups
// share one documented surface.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS weapons (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                name TEXT NOT NULL UNIQUE,
                weapon_type TEXT NOT NULL DEFAULT '',
                weapon_class TEXT NOT NULL DEFAULT '',
                damage TEXT NOT NULL DEFAULT '',
                regular_perks TEXT NOT NULL DEFAULT '',
                legendary_perks TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS weapon_mechanic_types (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                name TEXT NOT NULL UNIQUE,
                description TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS weapon_mechanics (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                weapon_id INTEGER NOT NULL,
                mechanic_type_id INTEGER NOT NULL,
                numeric_value REAL,
                unit TEXT NOT NULL DEFAULT '',
                notes TEXT NOT NULL DEFAULT '',
                FOREIGN KEY(weapon_id) REFERENCES weapons(id) ON DELETE CASCADE,
                FOREIGN KEY(mechanic_type_id) REFERENCES weapon_mechanic_types(id) ON DELETE CASCADE,
                UNIQUE(weapon_id, mechanic_type_id)
        );`,
	`CREATE TABLE IF NOT EXISTS armor (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                name TEXT NOT NULL,
                armor_type TEXT NOT NULL DEFAULT '',
                class TEXT NOT NULL DEFAULT '',
                slot TEXT NOT NULL DEFAULT '',
                set_name TEXT NOT NULL DEFAULT '',
                damage_resistance TEXT NOT NULL DEFAULT '',
                energy_resistance TEXT NOT NULL DEFAULT '',
                radiation_resistance TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS perks (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                name TEXT NOT NULL UNIQUE,
                special TEXT NOT NULL DEFAULT '',
                min_level INTEGER NOT NULL DEFAULT 1,
                race TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS perk_ranks (
                perk_id INTEGER NOT NULL,
                rank INTEGER NOT NULL,
                description TEXT NOT NULL DEFAULT '',
                PRIMARY KEY (perk_id, rank),
                FOREIGN KEY(perk_id) REFERENCES perks(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS legendary_perks (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                name TEXT NOT NULL UNIQUE,
                race TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS legendary_perk_ranks (
                legendary_perk_id INTEGER NOT NULL,
                rank INTEGER NOT NULL,
                description TEXT NOT NULL DEFAULT '',
                PRIMARY KEY (legendary_perk_id, rank),
                FOREIGN KEY(legendary_perk_id) REFERENCES legendary_perks(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS mutations (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                name TEXT NOT NULL UNIQUE,
                positive_effects TEXT NOT NULL DEFAULT '',
                negative_effects TEXT NOT NULL DEFAULT '',
                exclusive_with TEXT NOT NULL DEFAULT '',
                suppression_perk TEXT NOT NULL DEFAULT '',
                enhancement_perk TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS consumables (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                name TEXT NOT NULL UNIQUE,
                category TEXT NOT NULL DEFAULT '',
                effects TEXT NOT NULL DEFAULT '',
                special_modifiers TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE INDEX IF NOT EXISTS idx_weapons_class ON weapons(weapon_class);`,
	`CREATE INDEX IF NOT EXISTS idx_weapon_mechanics_weapon ON weapon_mechanics(weapon_id);`,
	`CREATE INDEX IF NOT EXISTS idx_armor_set ON armor(set_name);`,
	`CREATE VIEW IF NOT EXISTS v_weapons_with_perks AS
                SELECT
                        w.id AS id,
                        w.name AS weapon_name,
                        w.weapon_type AS weapon_type,
                        w.weapon_class AS weapon_class,
                        w.damage AS damage,
                        w.regular_perks AS regular_perks,
                        w.legendary_perks AS legendary_perks,
                        COALESCE(m.special_mechanics, '') AS special_mechanics
                FROM weapons w
                LEFT JOIN (
                        SELECT
                                wm.weapon_id,
                                GROUP_CONCAT(
                                        wmt.name || CASE
                                                WHEN wm.notes <> '' THEN ' (' || wm.notes || ')'
                                                ELSE ''
                                        END,
                                        '; '
                                ) AS special_mechanics
                        FROM weapon_mechanics wm
                        INNER JOIN weapon_mechanic_types wmt ON wmt.id = wm.mechanic_type_id
                        GROUP BY wm.weapon_id
                ) m ON m.weapon_id = w.id;`,
	`CREATE VIEW IF NOT EXISTS v_armor_complete AS
                SELECT
                        a.id AS id,
                        a.name AS name,
                        a.armor_type AS armor_type,
                        a.class AS class,
                        a.slot AS slot,
                        a.set_name AS set_name,
                        a.damage_resistance AS damage_resistance,
                        a.energy_resistance AS energy_resistance,
                        a.radiation_resistance AS radiation_resistance
                FROM armor a;`,
	`CREATE VIEW IF NOT EXISTS v_perks_all_ranks AS
                SELECT
                        p.id AS perk_id,
                        p.name AS perk_name,
                        p.special AS special,
                        p.min_level AS min_level,
                        p.race AS race,
                        pr.rank AS rank,
                        pr.description AS rank_description
                FROM perks p
                INNER JOIN perk_ranks pr ON pr.perk_id = p.id;`,
	`CREATE VIEW IF NOT EXISTS v_legendary_perks_all_ranks AS
                SELECT
                        lp.id AS legendary_perk_id,
                        lp.name AS perk_name,
                        lp.race AS race,
                        lpr.rank AS rank,
                        lpr.description AS rank_description
                FROM legendary_perks lp
                INNER JOIN legendary_perk_ranks lpr ON lpr.legendary_perk_id = lp.id;`,
	`CREATE VIEW IF NOT EXISTS v_mutations_complete AS
                SELECT
                        m.id AS mutation_id,
                        m.name AS mutation_name,
                        m.positive_effects AS positive_effects,
                        m.negative_effects AS negative_effects,
                        m.exclusive_with AS exclusive_with,
                        m.suppression_perk AS suppression_perk,
                        m.enhancement_perk AS enhancement_perk
                FROM mutations m;`,
	`CREATE VIEW IF NOT EXISTS v_consumables_complete AS
                SELECT
                        c.id AS consumable_id,
                        c.name AS consumable_name,
                        c.category AS category,
                        c.effects AS effects,
                        c.special_modifiers AS special_modifiers
                FROM consumables c;`,
}
