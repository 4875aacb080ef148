// fecexport génère le Fichier des Écritures Comptables d'un exercice pour
// une société : factures et avoirs émis, journal des ventes, encodage
// Windows-1252.
//
// Usage : go run ./cmd/fecexport -company <id> -year 2026 [-o chemin]
// Par défaut le fichier sort sous <SIREN>FEC<AAAA>1231.txt dans le
// répertoire courant, conformément à la convention de nommage de
// l'administration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/internal/infrastructure/fec"
	"github.com/facturio/facturation-api/internal/infrastructure/postgres"
	"github.com/facturio/facturation-api/pkg/config"
)

func main() {
	companyID := flag.String("company", "", "ID de la société")
	year := flag.Int("year", time.Now().Year()-1, "exercice à exporter")
	output := flag.String("o", "", "chemin du fichier de sortie (défaut : <SIREN>FEC<AAAA>1231.txt)")
	flag.Parse()

	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "fecexport: -company requis")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fecexport: configuration : %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fecexport: connexion PostgreSQL : %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	factureRepo := postgres.NewFactureRepository(pool)
	avoirRepo := postgres.NewAvoirRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)

	company, err := companyRepo.GetByID(*companyID)
	if err != nil || company == nil {
		fmt.Fprintf(os.Stderr, "fecexport: société %s introuvable\n", *companyID)
		os.Exit(1)
	}

	factures, err := factureRepo.ListEmittedByYear(*companyID, *year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fecexport: factures : %v\n", err)
		os.Exit(1)
	}
	avoirs, err := avoirRepo.ListEmittedByYear(*companyID, *year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fecexport: avoirs : %v\n", err)
		os.Exit(1)
	}

	clients, err := chargerClients(clientRepo, factures, avoirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fecexport: clients : %v\n", err)
		os.Exit(1)
	}

	path := *output
	if path == "" {
		path = fmt.Sprintf("%sFEC%d1231.txt", company.SIREN, *year)
	}
	out, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fecexport: création du fichier : %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := fec.NewWriter().Write(out, factures, avoirs, clients); err != nil {
		fmt.Fprintf(os.Stderr, "fecexport: écriture : %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Généré %s : %d factures, %d avoirs\n", path, len(factures), len(avoirs))
}

// chargerClients résout une fois chaque client référencé par les documents.
func chargerClients(repo *postgres.ClientRepo, factures []*entity.Facture, avoirs []*entity.Avoir) (map[string]*entity.Client, error) {
	clients := make(map[string]*entity.Client)
	charger := func(id string) error {
		if id == "" {
			return nil
		}
		if _, ok := clients[id]; ok {
			return nil
		}
		c, err := repo.GetByID(id)
		if err != nil {
			return err
		}
		if c != nil {
			clients[id] = c
		}
		return nil
	}
	for _, f := range factures {
		if err := charger(f.ClientID); err != nil {
			return nil, err
		}
	}
	for _, a := range avoirs {
		if err := charger(a.ClientID); err != nil {
			return nil, err
		}
	}
	return clients, nil
}
