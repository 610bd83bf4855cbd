// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package structex

import "strings"

// dictionary is the reference word list for the unrecognized-word rate.
// It holds the function words and administrative vocabulary that dominate
// legal French; OCR noise almost never lands on these, so a high miss
// rate is a reliable garbage signal even with a compact list.
var dictionary = func() map[string]bool {
	words := strings.Fields(dictionaryWords)
	d := make(map[string]bool, len(words))
	for _, w := range words {
		d[w] = true
	}
	return d
}()

const dictionaryWords = `
les des une est sont par pour dans sur avec sans sous entre vers chez
aux ces son ses leur leurs nos vos notre votre qui que quoi dont
tout tous toute toutes autre autres même mêmes ainsi alors comme lors
présent présente présents présentes sera seront peut peuvent doit doivent
être avoir fait faite faits faites vertu titre chapitre section
loi lois décret décrets ordonnance ordonnances article articles alinéa
alinéas disposition dispositions application modalités conditions
république française français premier première ministre ministres
président présidente gouvernement conseil état état ministériel
constitution constitutionnel promulgue promulguée promulgation
exécution exécutée exécuté publié publiée publication journal officiel
vigueur entrée abrogé abrogée abrogés abrogées modifié modifiée
relative relatif relatifs relatives portant fixant concernant
suivant suivants suivante suivantes conformément notamment
nationale national assemblée sénat délibéré adopté adoptée
budget budgétaire finances financier fiscale impôt impôts taxe taxes
code civil pénal travail commerce santé publique sécurité sociale
collectivités territoriales communes département départements régions
droit droits obligation obligations personne personnes membre membres
peine peines amende amendes sanction sanctions infraction infractions
texte textes annexe annexes tableau paragraphe phrase mots rédigé
remplacé inséré complété supprimé date jour mois année années
janvier février mars avril juin juillet août septembre octobre
novembre décembre fonction fonctions nomination nommé chargé chargée
garde sceaux justice intérieur défense affaires étrangères économie
éducation agriculture environnement transports culture
dernier dernière peut faire sans lieu cas effet compter partir
`
