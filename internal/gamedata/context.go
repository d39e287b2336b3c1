// File path: internal/gamedata/context.go
package gamedata

// MechanicsContext is the static game-mechanics knowledge block handed to
// the model alongside database rows. It is the only out-of-database context
// an answer may draw on.
const MechanicsContext = `FALLOUT 76 GAME MECHANICS CONTEXT:

1. Weapon Damage Levels:
   - Multiple damage values (e.g., "51 / 57 / 65 / 83") represent different weapon LEVELS
   - Higher level weapons have higher damage output
   - Each value corresponds to a specific level tier

2. Character Races:
   - Human: Standard character
   - Ghoul: Added in recent updates, has radiation-based mechanics
   - Some perks are race-specific (e.g., "Action Diet" and "Feral Rage" are Ghoul-only)

3. Build Archetypes:
   - Bloodied: Low health, high damage
   - Stealth/Sneak: Hidden damage multipliers
   - Heavy Gunner: Tank with heavy weapons
   - Commando: Automatic rifle specialist
   - VATS: Critical hit focused
   - Melee: Close combat specialist

4. Armor Types:
   - Regular Armor: Light/Sturdy/Heavy variants with different DR/ER values
   - Power Armor: Requires fusion cores, provides highest protection
   - DR = Damage Resistance, ER = Energy Resistance, RR = Radiation Resistance

5. Perk System:
   - Regular Perks: 1-5 ranks, equipped in SPECIAL categories
   - Legendary Perks: 1-4 ranks, more powerful endgame perks
   - Perks can have conditional effects (scoped, ADS, VATS, etc.)

6. Mutations:
   - 19 total mutations available, acquired through radiation exposure
   - Each mutation has positive and negative effects
   - Carnivore and Herbivore are mutually exclusive
   - Class Freak perk reduces negative effects by 25%/50%/75% at ranks 1/2/3
   - Strange in Numbers perk increases positive effects by 25% when teamed with other mutated players
   - Starched Genes perk prevents gaining/losing mutations`

// GroundingRules forbids the model from reaching past the supplied rows.
const GroundingRules = `ABSOLUTE RULES - NO EXCEPTIONS:
1. Use ONLY the database results provided above
2. Use ONLY the game mechanics context explicitly provided
3. Do NOT use training data, external knowledge, or assumptions about the game
4. NEVER mention perks, weapons, or items that are not in the database results
5. NEVER speculate about what might exist or could be available
6. If information is not in the database results, say "This information is not available in the database"

Your ONLY job is to format and explain the database results clearly. Nothing more.`
