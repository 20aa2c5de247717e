// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema migrations.

# Connecting

Open accepts a database type and URL:

	conn, err := db.Open(db.DialectSQLite, "file:onlyfringe.db")
	conn, err := db.Open(db.DialectPostgres, "postgres://...")

SQLite URLs get foreign key enforcement appended and the pool is limited to
a single connection.

# Migrations

Migrate applies the embedded migrations for the dialect:

	if err := db.Migrate(conn, db.DialectSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - an up-to-date schema is not an error.
Rollback reverts a number of steps.

# Tables

  - users: platform participants (username and email unique)
  - arguments: sourced claims with verification state and stored verdict
  - sources: citations for an argument
  - rebuttals: counter-claims against an argument
  - rebuttal_sources: citations for a rebuttal

# Relationships

	users 1──* arguments
	users 1──* rebuttals
	arguments 1──* sources
	arguments 1──* rebuttals
	rebuttals 1──* rebuttal_sources

Child tables of arguments and rebuttals use ON DELETE CASCADE.
*/
package db
